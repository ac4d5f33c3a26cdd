package views

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/whatsapp"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

// nouns name a collection's rows in toasts.
var nouns = map[string]string{
	models.CollectionLeads:         "Lead",
	models.CollectionCustomers:     "Customer",
	models.CollectionInstallations: "Installation",
	models.CollectionTeam:          "Team member",
	models.CollectionMaterials:     "Material",
	models.CollectionOngoingWork:   "Project",
	models.CollectionIncome:        "Income",
	models.CollectionExpenses:      "Expense",
	models.CollectionReminders:     "Reminder",
	models.CollectionGallery:       "Photo",
}

func deletedVerb(collection string) string {
	switch collection {
	case models.CollectionTeam, models.CollectionGallery:
		return "removed"
	}
	return "deleted"
}

// SaveResult reports what a save did.
type SaveResult struct {
	ID string `json:"id"`
	// CustomerID is set when saving a lead created a customer.
	CustomerID string `json:"customerId,omitempty"`
}

// fail shows a write error to the user and returns it.
func fail(w *workspace.Workspace, err error) error {
	w.Toasts.Push(err.Error(), toast.Error)
	return err
}

// Save creates (empty id) or updates a row. Leads that newly reach
// Converted with the advance paid also create a customer.
func (s *Service) Save(ctx context.Context, w *workspace.Workspace, collection, id string, fields map[string]any) (SaveResult, error) {
	return s.save(ctx, w, collection, id, fields, nil)
}

// save writes client fields plus server-set ones, which Prepare would
// otherwise drop.
func (s *Service) save(ctx context.Context, w *workspace.Workspace, collection, id string, fields, server map[string]any) (SaveResult, error) {
	schema, ok := models.Lookup(collection)
	if !ok {
		return SaveResult{}, fmt.Errorf("%w: %s", docstore.ErrInvalidCollection, collection)
	}
	if !w.Session.Role.CanEdit(collection) {
		return SaveResult{}, ErrForbidden
	}
	create := id == ""
	payload := schema.Prepare(fields, create)
	for k, v := range server {
		payload[k] = v
	}

	if collection == models.CollectionIncome || collection == models.CollectionExpenses {
		if _, ok := payload["amount"]; ok || create {
			if format.ToNumber(payload["amount"]) <= 0 {
				w.Toasts.Push("Amount must be greater than zero", toast.Error)
				return SaveResult{}, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
			}
		}
	}

	var prevStatus string
	merged := payload
	if !create && collection == models.CollectionLeads {
		prev, err := s.writer.Get(ctx, collection, id)
		if err != nil {
			return SaveResult{}, fail(w, err)
		}
		prevStatus = prev.String("status")
		merged = docstore.CloneFields(prev)
		for k, v := range payload {
			merged[k] = v
		}
	}

	res := SaveResult{ID: id}
	noun := nouns[collection]
	if create {
		newID, err := s.writer.Add(ctx, collection, payload)
		if err != nil {
			return SaveResult{}, fail(w, err)
		}
		res.ID = newID
		w.Toasts.Push(noun+" added", toast.OK)
	} else {
		if err := s.writer.Update(ctx, collection, id, payload); err != nil {
			return SaveResult{}, fail(w, err)
		}
		w.Toasts.Push(noun+" updated", toast.OK)
	}

	if collection == models.CollectionLeads && models.ConvertsToCustomer(merged, prevStatus) {
		customers, _ := models.Lookup(models.CollectionCustomers)
		customerID, err := s.writer.Add(ctx, models.CollectionCustomers, customers.Prepare(models.CustomerFromLead(merged), true))
		if err != nil {
			return res, fail(w, err)
		}
		res.CustomerID = customerID
		w.Toasts.Push(format.SafeStr(merged["name"])+" auto-added to Customers!", toast.OK)
	}
	return res, nil
}

// AddLedger records an income or expense line from the Revenue page.
func (s *Service) AddLedger(ctx context.Context, w *workspace.Workspace, entryType string, fields map[string]any) (SaveResult, error) {
	collection, ok := models.LedgerCollection(entryType)
	if !ok {
		return SaveResult{}, fmt.Errorf("%w: unknown entry type %q", ErrValidation, entryType)
	}
	return s.Save(ctx, w, collection, "", fields)
}

// AddPhoto records an uploaded gallery image. The storage key is only
// ever set here, from the upload itself.
func (s *Service) AddPhoto(ctx context.Context, w *workspace.Workspace, url, key, caption string) (SaveResult, error) {
	return s.save(ctx, w, models.CollectionGallery, "",
		map[string]any{"url": url, "caption": caption},
		map[string]any{"key": key})
}

// RecordPayment adds the income line for a verified online payment once.
// A payment already on the income ledger returns the existing line with
// recorded set.
func (s *Service) RecordPayment(ctx context.Context, w *workspace.Workspace, paymentID string, entry map[string]any) (res SaveResult, recorded bool, err error) {
	if paymentID == "" {
		return SaveResult{}, false, fmt.Errorf("%w: payment id required", ErrValidation)
	}
	s.payMu.Lock()
	defer s.payMu.Unlock()

	if id, ok := s.paid[paymentID]; ok {
		return SaveResult{ID: id}, true, nil
	}
	release, err := acquire(ctx, w, []string{models.CollectionIncome})
	if err != nil {
		return SaveResult{}, false, err
	}
	defer release()
	for _, rec := range w.Data.Snapshot(models.CollectionIncome) {
		if rec.String("paymentId") == paymentID {
			s.paid[paymentID] = rec.ID()
			return SaveResult{ID: rec.ID()}, true, nil
		}
	}

	res, err = s.save(ctx, w, models.CollectionIncome, "", entry, map[string]any{"paymentId": paymentID})
	if err != nil {
		return SaveResult{}, false, err
	}
	s.paid[paymentID] = res.ID
	return res, false, nil
}

// Delete removes a row when the role allows it.
func (s *Service) Delete(ctx context.Context, w *workspace.Workspace, collection, id string) error {
	if _, ok := models.Lookup(collection); !ok {
		return fmt.Errorf("%w: %s", docstore.ErrInvalidCollection, collection)
	}
	if !w.Session.Role.CanDelete(collection) {
		return ErrForbidden
	}
	if err := s.writer.Delete(ctx, collection, id); err != nil {
		return fail(w, err)
	}
	w.Toasts.Push(nouns[collection]+" "+deletedVerb(collection), toast.OK)
	return nil
}

// SendResult carries the message link for the browser to open.
type SendResult struct {
	Link      string `json:"link"`
	Delivered bool   `json:"delivered"`
	Provider  string `json:"provider,omitempty"`
}

// SendReminder builds the WhatsApp link for a pending reminder, delivers
// it through the configured provider if there is one, and marks the
// reminder Sent.
func (s *Service) SendReminder(ctx context.Context, w *workspace.Workspace, id string) (SendResult, error) {
	rec, err := s.writer.Get(ctx, models.CollectionReminders, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return SendResult{}, err
		}
		return SendResult{}, fail(w, err)
	}
	r, err := models.Decode[models.Reminder](rec)
	if err != nil {
		return SendResult{}, fail(w, err)
	}
	if !r.CanSend() {
		return SendResult{}, fmt.Errorf("%w: reminder is not pending or has no phone", ErrValidation)
	}

	res := SendResult{Link: whatsapp.Link(s.countryCode, r.Phone, r.Message)}
	if s.sender != nil {
		res.Provider = s.sender.Name()
		if err := s.sender.SendText(ctx, r.Phone, r.Message); err != nil {
			log.Printf("[Views] %s delivery to %s failed: %v", res.Provider, r.Phone, err)
			w.Toasts.Push("Could not deliver automatically, open the WhatsApp link", toast.Warning)
		} else {
			res.Delivered = true
		}
	}

	if err := s.writer.Update(ctx, models.CollectionReminders, id, map[string]any{"status": models.ReminderSent}); err != nil {
		return res, fail(w, err)
	}
	w.Toasts.Push("Marked as sent", toast.OK)
	return res, nil
}
