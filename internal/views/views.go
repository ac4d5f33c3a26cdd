// Package views builds the thirteen page view models from a workspace's
// snapshots and performs the page actions (save, delete, send). Role
// affordances here mirror what the HTTP layer enforces.
package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/listing"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/whatsapp"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("not permitted for this role")
	ErrUnknownPage = errors.New("unknown page")
)

// Writer performs document writes. *realtime.Adapter satisfies it.
type Writer interface {
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (docstore.Record, error)
}

// Service renders pages and runs page actions.
type Service struct {
	writer      Writer
	sender      whatsapp.Provider
	countryCode string
	now         func() time.Time

	// paid maps gateway payment ids to the income line recording them,
	// covering writes the session snapshot has not caught up with yet.
	payMu sync.Mutex
	paid  map[string]string
}

// NewService returns a page service. sender may be nil, in which case
// reminders are only marked sent and the caller opens the returned link.
func NewService(writer Writer, sender whatsapp.Provider, countryCode string) *Service {
	if countryCode == "" {
		countryCode = whatsapp.DefaultCountryCode
	}
	return &Service{writer: writer, sender: sender, countryCode: countryCode, now: timeutil.Now, paid: make(map[string]string)}
}

// Params are the list controls a page request carries.
type Params struct {
	Search         string
	Status         string
	Visible        int
	IncomeVisible  int
	ExpenseVisible int
}

// Money is an amount with its display form.
type Money struct {
	Value   decimal.Decimal `json:"value"`
	Display string          `json:"display"`
}

func money(d decimal.Decimal) Money {
	return Money{Value: d, Display: format.INR(d)}
}

// Actions are the write affordances a page shows.
type Actions struct {
	CanCreate bool `json:"canCreate"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

func actionsFor(role session.Role, collection string) Actions {
	edit := role.CanEdit(collection)
	return Actions{CanCreate: edit, CanEdit: edit, CanDelete: role.CanDelete(collection)}
}

// List is a paginated, filtered set of typed rows.
type List[T any] struct {
	Items       []T    `json:"items"`
	Total       int    `json:"total"`
	Visible     int    `json:"visible"`
	NextVisible int    `json:"nextVisible"`
	HasMore     bool   `json:"hasMore"`
	Remaining   int    `json:"remaining"`
	Empty       bool   `json:"empty"`
	Search      string `json:"search,omitempty"`
	Status      string `json:"status,omitempty"`
}

func newList[T any](page listing.Page, q listing.Query, rows func([]docstore.Record) []T) List[T] {
	return List[T]{
		Items:       rows(page.Items),
		Total:       page.Total,
		Visible:     page.Visible,
		NextVisible: page.NextVisible,
		HasMore:     page.HasMore,
		Remaining:   page.Remaining,
		Empty:       page.Empty,
		Search:      q.Term,
		Status:      q.Status,
	}
}

// acquire makes the page's collections live (lazy mode) and waits for
// their first results.
func acquire(ctx context.Context, w *workspace.Workspace, collections []string) (func(), error) {
	releases := make([]func(), 0, len(collections))
	for _, c := range collections {
		releases = append(releases, w.Data.Acquire(c))
	}
	release := func() {
		for _, r := range releases {
			r()
		}
	}
	if err := w.Data.Ready(ctx, collections...); err != nil {
		release()
		return nil, fmt.Errorf("waiting for data: %w", err)
	}
	return release, nil
}
