package models

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
)

// numberHook applies the store-wide coercion rule to numeric targets, so a
// stray "" or "abc" in a numeric field decodes as 0 instead of failing.
func numberHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Float64, reflect.Float32:
		return format.ToNumber(data), nil
	case reflect.Int, reflect.Int64, reflect.Int32:
		return int64(format.ToNumber(data)), nil
	}
	return data, nil
}

// Decode maps a record onto a typed model. Unknown fields are ignored;
// text fields accept numbers and booleans.
func Decode[T any](rec docstore.Record) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       numberHook,
		WeaklyTypedInput: true,
		Result:           &out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return out, fmt.Errorf("decode %s: %w", rec.ID(), err)
	}
	return out, nil
}

// DecodeAll decodes a snapshot, skipping records that cannot be decoded.
func DecodeAll[T any](recs []docstore.Record) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		v, err := Decode[T](r)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Meta carries the store-managed fields every model embeds.
type Meta struct {
	ID        string    `mapstructure:"id" json:"id"`
	CreatedAt time.Time `mapstructure:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `mapstructure:"updatedAt" json:"updatedAt"`
}
