package docstore

import (
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
)

// Record is a flattened document as pages consume it.
type Record map[string]any

// ID returns the document id.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// String returns a field as display text, "" when missing.
func (r Record) String(field string) string {
	return format.SafeStr(r[field])
}

// Number returns a field coerced to a number.
func (r Record) Number(field string) float64 {
	return format.ToNumber(r[field])
}

// Time returns a timestamp field, zero when absent.
func (r Record) Time(field string) time.Time {
	t, _ := r[field].(time.Time)
	return t
}

// Clone returns a deep copy so callers can never reach a snapshot's maps.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// CloneRecords deep-copies a snapshot.
func CloneRecords(in []Record) []Record {
	if in == nil {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Record:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// CloneFields deep-copies a write payload.
func CloneFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}
