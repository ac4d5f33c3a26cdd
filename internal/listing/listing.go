// Package listing implements the search, status filter and "show more"
// pagination shared by every list page. All matching records are already
// resident in the session snapshot, so nothing here touches storage.
package listing

import (
	"strings"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
)

// PageSize is both the initial visible count and the "show more" increment.
const PageSize = 20

// AllStatuses disables the status filter, as does an empty status.
const AllStatuses = "all"

// Query describes one list request.
type Query struct {
	Term        string
	Fields      []string
	StatusField string
	Status      string
	Visible     int
}

// Filter keeps records whose Fields contain term (case-insensitive) and whose
// status field equals status exactly. Missing fields compare as "".
func Filter(records []docstore.Record, term string, fields []string, statusField, status string) []docstore.Record {
	needle := strings.ToLower(strings.TrimSpace(term))
	filterStatus := status != "" && status != AllStatuses && statusField != ""

	out := make([]docstore.Record, 0, len(records))
	for _, rec := range records {
		if filterStatus && format.SafeStr(rec[statusField]) != status {
			continue
		}
		if needle != "" && !matches(rec, needle, fields) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matches(rec docstore.Record, needle string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(format.SafeStr(rec[f])), needle) {
			return true
		}
	}
	return false
}

// Page is the visible window over a filtered result.
// NextVisible is the visible count the "show more" control requests.
type Page struct {
	Items       []docstore.Record `json:"items"`
	Total       int               `json:"total"`
	Visible     int               `json:"visible"`
	NextVisible int               `json:"nextVisible"`
	HasMore     bool              `json:"hasMore"`
	Remaining   int               `json:"remaining"`
	Empty       bool              `json:"empty"`
}

// Paginate reveals the first visible records. visible <= 0 means the
// initial page.
func Paginate(filtered []docstore.Record, visible int) Page {
	if visible <= 0 {
		visible = PageSize
	}
	total := len(filtered)
	n := visible
	if n > total {
		n = total
	}
	return Page{
		Items:       filtered[:n],
		Total:       total,
		Visible:     visible,
		NextVisible: NextVisible(visible, total),
		HasMore:     visible < total,
		Remaining:   total - n,
		Empty:       total == 0,
	}
}

// NextVisible is the visible count after one "show more": PageSize more,
// capped at total. Nothing changes once everything is shown.
func NextVisible(visible, total int) int {
	if visible <= 0 {
		visible = PageSize
	}
	if visible >= total {
		return visible
	}
	next := visible + PageSize
	if next > total {
		next = total
	}
	return next
}

// Apply runs Filter then Paginate.
func Apply(records []docstore.Record, q Query) Page {
	return Paginate(Filter(records, q.Term, q.Fields, q.StatusField, q.Status), q.Visible)
}
