package models

import (
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
)

// Collection names
const (
	CollectionLeads         = "leads"
	CollectionCustomers     = "customers"
	CollectionInstallations = "installations"
	CollectionTeam          = "team"
	CollectionMaterials     = "materials"
	CollectionOngoingWork   = "ongoingWork"
	CollectionIncome        = "income"
	CollectionExpenses      = "expenses"
	CollectionReminders     = "reminders"
	CollectionGallery       = "gallery"
)

// Schema describes how one collection is subscribed, written and searched.
type Schema struct {
	Collection string
	// Order is the live query order; zero means the default (newest first).
	Order docstore.Order
	// Numeric fields are coerced to numbers on every write.
	Numeric []string
	// Defaults fill missing or empty fields when a document is created.
	Defaults func() map[string]any
	// SearchFields are matched by the page search box.
	SearchFields []string
	// StatusField is the field the page's status filter compares.
	StatusField string
	// ServerOnly fields are set by the service itself and dropped from
	// client payloads.
	ServerOnly []string
}

// Schemas lists the business collections in subscription order.
var Schemas = []Schema{
	{
		Collection:   CollectionLeads,
		Defaults:     leadDefaults,
		SearchFields: []string{"name", "phone", "address"},
		StatusField:  "status",
	},
	{
		Collection:   CollectionCustomers,
		Numeric:      CustomerNumericFields,
		Defaults:     func() map[string]any { return map[string]any{"status": CustomerActive, "paymentType": PaymentCash} },
		SearchFields: []string{"name", "phone"},
	},
	{
		Collection:   CollectionInstallations,
		Numeric:      []string{"progress", "floors"},
		Defaults:     installationDefaults,
		SearchFields: []string{"customerName", "phone", "address"},
	},
	{
		Collection: CollectionTeam,
		Numeric:    []string{"age", "salary", "attendance"},
		Defaults: func() map[string]any {
			return map[string]any{"role": "Electrician", "status": TeamActive, "attendance": 0}
		},
		SearchFields: []string{"name", "phone", "role"},
		StatusField:  "status",
	},
	{
		Collection:   CollectionMaterials,
		Numeric:      []string{"stock", "dispatched", "installed", "balance"},
		Defaults:     func() map[string]any { return map[string]any{"unit": "pcs"} },
		SearchFields: []string{"name"},
	},
	{
		Collection: CollectionOngoingWork,
		Numeric:    []string{"progress"},
		Defaults: func() map[string]any {
			return map[string]any{"status": WorkInProgress, "progress": 0}
		},
		SearchFields: []string{"projectName"},
		StatusField:  "status",
	},
	{
		Collection: CollectionIncome,
		Order:      docstore.Order{Field: "date", Desc: true},
		Numeric:    []string{"amount"},
		Defaults:   func() map[string]any { return map[string]any{"date": timeutil.Today()} },
		ServerOnly: []string{"paymentId"},
	},
	{
		Collection: CollectionExpenses,
		Order:      docstore.Order{Field: "date", Desc: true},
		Numeric:    []string{"amount"},
		Defaults:   func() map[string]any { return map[string]any{"date": timeutil.Today()} },
	},
	{
		Collection: CollectionReminders,
		Defaults: func() map[string]any {
			return map[string]any{"type": "Payment Reminder", "status": ReminderPending, "date": timeutil.Today()}
		},
		SearchFields: []string{"customer", "phone", "message"},
		StatusField:  "status",
	},
	{
		Collection: CollectionGallery,
		ServerOnly: []string{"key"},
	},
}

// Lookup returns the schema for a collection.
func Lookup(collection string) (Schema, bool) {
	for _, s := range Schemas {
		if s.Collection == collection {
			return s, true
		}
	}
	return Schema{}, false
}

// Collections returns every business collection name.
func Collections() []string {
	out := make([]string, len(Schemas))
	for i, s := range Schemas {
		out[i] = s.Collection
	}
	return out
}

// SubscriptionOrder is the order the live query should request.
func (s Schema) SubscriptionOrder() docstore.Order {
	if s.Order.IsZero() {
		return docstore.Newest
	}
	return s.Order
}

// Prepare returns a write payload: reserved and server-only keys dropped,
// numeric fields coerced and, for creates, defaults filled in.
func (s Schema) Prepare(fields map[string]any, create bool) map[string]any {
	out := docstore.StripReserved(fields)
	for _, f := range s.ServerOnly {
		delete(out, f)
	}
	if create && s.Defaults != nil {
		for k, v := range s.Defaults() {
			if isBlank(out[k]) {
				out[k] = v
			}
		}
	}
	for _, f := range s.Numeric {
		if _, ok := out[f]; ok || create {
			out[f] = format.ToNumber(out[f])
		}
	}
	return out
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
