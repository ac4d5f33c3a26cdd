package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/datastore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore/memory"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/realtime"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

type env struct {
	svc     *Service
	mem     *memory.Store
	adapter *realtime.Adapter
	ctx     context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := memory.New()
	adapter := realtime.NewAdapter(mem)
	ctx, cancel := context.WithCancel(context.Background())
	go adapter.Run(ctx)
	select {
	case <-adapter.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("change feed not ready")
	}
	t.Cleanup(func() {
		cancel()
		adapter.Close()
	})
	return &env{svc: NewService(adapter, nil, ""), mem: mem, adapter: adapter, ctx: ctx}
}

func (e *env) workspace(t *testing.T, role session.Role) *workspace.Workspace {
	t.Helper()
	notifier := toast.NewNotifier()
	w := &workspace.Workspace{
		Session: &session.Session{UserID: 1, Email: string(role) + "@pragathi.in", Role: role},
		Data:    datastore.New(e.adapter, notifier, false),
		Toasts:  notifier,
	}
	w.Data.Open()
	t.Cleanup(w.Close)
	return w
}

func (e *env) count(t *testing.T, collection string) int {
	t.Helper()
	docs, err := e.mem.List(e.ctx, collection, docstore.Unordered)
	if err != nil {
		t.Fatal(err)
	}
	return len(docs)
}

// eventually polls until cond holds; snapshots update asynchronously.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func hasToast(w *workspace.Workspace, msg string, kind toast.Kind) bool {
	for _, tt := range w.Toasts.List() {
		if tt.Message == msg && tt.Kind == kind {
			return true
		}
	}
	return false
}

func TestLeadConversionCreatesOneCustomer(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAdmin)

	res, err := e.svc.Save(e.ctx, w, models.CollectionLeads, "", map[string]any{"name": "Ravi", "phone": "9876543210"})
	if err != nil {
		t.Fatal(err)
	}
	if e.count(t, models.CollectionCustomers) != 0 {
		t.Fatal("interested lead must not create a customer")
	}

	res2, err := e.svc.Save(e.ctx, w, models.CollectionLeads, res.ID, map[string]any{"status": "Converted", "advancePaid": "Yes"})
	if err != nil {
		t.Fatal(err)
	}
	if res2.CustomerID == "" || e.count(t, models.CollectionCustomers) != 1 {
		t.Fatal("conversion should create exactly one customer")
	}
	if !hasToast(w, "Ravi auto-added to Customers!", toast.OK) {
		t.Fatalf("missing conversion toast: %v", w.Toasts.List())
	}

	// Saving the converted lead again does not duplicate the customer.
	if _, err := e.svc.Save(e.ctx, w, models.CollectionLeads, res.ID, map[string]any{"notes": "called", "status": "Converted", "advancePaid": "Yes"}); err != nil {
		t.Fatal(err)
	}
	if n := e.count(t, models.CollectionCustomers); n != 1 {
		t.Fatalf("customers = %d, want 1", n)
	}

	doc, err := e.mem.Get(e.ctx, models.CollectionCustomers, res2.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Fields["name"] != "Ravi" || doc.Fields["totalPrice"] != 0.0 || doc.Fields["status"] != models.CustomerActive {
		t.Fatalf("customer payload %v", doc.Fields)
	}
}

func TestCreateConvertedLeadCreatesCustomer(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAssistant)
	if _, err := e.svc.Save(e.ctx, w, models.CollectionLeads, "", map[string]any{"name": "Sita", "status": "Converted", "advancePaid": "Yes"}); err != nil {
		t.Fatal(err)
	}
	if e.count(t, models.CollectionCustomers) != 1 {
		t.Fatal("lead created as converted should create a customer")
	}
}

func TestRevenueRejectsNonPositiveAmount(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAdmin)

	for _, amount := range []any{"0", "", -5, "abc"} {
		_, err := e.svc.AddLedger(e.ctx, w, "income", map[string]any{"desc": "Advance", "amount": amount})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("amount %v: err = %v, want ErrValidation", amount, err)
		}
	}
	if e.count(t, models.CollectionIncome) != 0 {
		t.Fatal("invalid amounts must not be written")
	}
	if !hasToast(w, "Amount must be greater than zero", toast.Error) {
		t.Fatal("missing validation toast")
	}

	if _, err := e.svc.AddLedger(e.ctx, w, "expense", map[string]any{"desc": "Cable", "amount": "1200.50"}); err != nil {
		t.Fatal(err)
	}
	if !hasToast(w, "Expense added", toast.OK) {
		t.Fatal("missing expense toast")
	}
	if _, err := e.svc.AddLedger(e.ctx, w, "refund", map[string]any{"amount": 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown entry type err = %v", err)
	}
}

func TestRoleGates(t *testing.T) {
	e := newEnv(t)
	assistant := e.workspace(t, session.RoleAssistant)
	admin := e.workspace(t, session.RoleAdmin)

	res, err := e.svc.Save(e.ctx, admin, models.CollectionMaterials, "", map[string]any{"name": "Panel", "balance": 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Save(e.ctx, assistant, models.CollectionMaterials, res.ID, map[string]any{"balance": 40}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("assistant material edit err = %v", err)
	}
	if err := e.svc.Delete(e.ctx, assistant, models.CollectionMaterials, res.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("assistant delete err = %v", err)
	}
	if err := e.svc.Delete(e.ctx, admin, models.CollectionCustomers, "x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("customers are never deletable, got %v", err)
	}
	for _, page := range []string{PageReports, PageSettings} {
		if _, err := e.svc.Render(e.ctx, assistant, page, Params{}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("assistant %s err = %v", page, err)
		}
	}

	if err := e.svc.Delete(e.ctx, admin, models.CollectionMaterials, res.ID); err != nil {
		t.Fatal(err)
	}
	if !hasToast(admin, "Material deleted", toast.OK) {
		t.Fatal("missing delete toast")
	}
	if _, err := e.svc.Render(e.ctx, admin, "nowhere", Params{}); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("unknown page err = %v", err)
	}
}

func TestWriteFailureShowsErrorToast(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAdmin)

	_, err := e.svc.Save(e.ctx, w, models.CollectionCustomers, "missing", map[string]any{"name": "x"})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	list := w.Toasts.List()
	if len(list) != 1 || list[0].Kind != toast.Error || list[0].Message != err.Error() {
		t.Fatalf("toasts = %+v", list)
	}
}

type fakeSender struct {
	phone, message string
	err            error
}

func (f *fakeSender) SendText(_ context.Context, phone, message string) error {
	f.phone, f.message = phone, message
	return f.err
}

func (f *fakeSender) Name() string { return "fake" }

func TestSendReminder(t *testing.T) {
	e := newEnv(t)
	sender := &fakeSender{}
	e.svc = NewService(e.adapter, sender, "91")
	w := e.workspace(t, session.RoleManager)

	res, err := e.svc.Save(e.ctx, w, models.CollectionReminders, "", map[string]any{
		"customer": "Ravi", "phone": "98765 43210", "message": "Payment due & pending",
	})
	if err != nil {
		t.Fatal(err)
	}

	sent, err := e.svc.SendReminder(e.ctx, w, res.ID)
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://wa.me/919876543210?text=Payment%20due%20%26%20pending"; sent.Link != want {
		t.Fatalf("link = %q, want %q", sent.Link, want)
	}
	if !sent.Delivered || sender.message != "Payment due & pending" {
		t.Fatalf("provider not used: %+v %+v", sent, sender)
	}
	if !hasToast(w, "Marked as sent", toast.OK) {
		t.Fatal("missing sent toast")
	}

	eventually(t, func() bool {
		recs := w.Data.Snapshot(models.CollectionReminders)
		return len(recs) == 1 && recs[0]["status"] == models.ReminderSent
	})
	page, err := e.svc.Render(e.ctx, w, PageReminders, Params{})
	if err != nil {
		t.Fatal(err)
	}
	rows := page.(RemindersPage).Items
	if len(rows) != 1 || rows[0].CanSend || rows[0].Link != "" {
		t.Fatalf("sent reminder still sendable: %+v", rows)
	}

	if _, err := e.svc.SendReminder(e.ctx, w, res.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("second send err = %v", err)
	}
}

func TestDashboardFinancialsAdminOnly(t *testing.T) {
	e := newEnv(t)
	admin := e.workspace(t, session.RoleAdmin)
	manager := e.workspace(t, session.RoleManager)

	if _, err := e.svc.AddLedger(e.ctx, admin, "income", map[string]any{"amount": 50000}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.AddLedger(e.ctx, admin, "expense", map[string]any{"amount": 12000}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Save(e.ctx, admin, models.CollectionCustomers, "", map[string]any{"name": "A", "totalPrice": 1000, "advanceAmount": 400}); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool {
		return len(admin.Data.Snapshot(models.CollectionIncome)) == 1 &&
			len(admin.Data.Snapshot(models.CollectionExpenses)) == 1 &&
			len(admin.Data.Snapshot(models.CollectionCustomers)) == 1 &&
			len(manager.Data.Snapshot(models.CollectionExpenses)) == 1 &&
			len(manager.Data.Snapshot(models.CollectionCustomers)) == 1
	})

	got, err := e.svc.Render(e.ctx, admin, PageDashboard, Params{})
	if err != nil {
		t.Fatal(err)
	}
	d := got.(Dashboard)
	if d.Revenue == nil || d.Revenue.Net.Display != "₹38,000" {
		t.Fatalf("admin revenue = %+v", d.Revenue)
	}
	if d.PendingPayments != 1 {
		t.Fatalf("pending payments = %d", d.PendingPayments)
	}

	got, err = e.svc.Render(e.ctx, manager, PageDashboard, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if got.(Dashboard).Revenue != nil {
		t.Fatal("manager must not see financial totals")
	}
}

func TestLeadsPagination(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAdmin)
	for i := 0; i < 45; i++ {
		if _, err := e.adapter.Add(e.ctx, models.CollectionLeads, map[string]any{"name": fmt.Sprintf("Lead %02d", i), "status": "Interested"}); err != nil {
			t.Fatal(err)
		}
	}
	eventually(t, func() bool { return len(w.Data.Snapshot(models.CollectionLeads)) == 45 })

	got, _ := e.svc.Render(e.ctx, w, PageLeads, Params{})
	page := got.(LeadsPage)
	if len(page.Items) != 20 || !page.HasMore || page.Remaining != 25 || page.NextVisible != 40 {
		t.Fatalf("first page: %d items, hasMore %v, next %d", len(page.Items), page.HasMore, page.NextVisible)
	}

	got, _ = e.svc.Render(e.ctx, w, PageLeads, Params{Visible: 40})
	if n := len(got.(LeadsPage).Items); n != 40 {
		t.Fatalf("second step: %d items", n)
	}

	got, _ = e.svc.Render(e.ctx, w, PageLeads, Params{Search: "no such lead"})
	if !got.(LeadsPage).Empty {
		t.Fatal("empty search should set the empty flag")
	}

	got, _ = e.svc.Render(e.ctx, w, PageLeads, Params{Status: "Converted"})
	if got.(LeadsPage).Total != 0 {
		t.Fatal("status filter not applied")
	}
}

func TestNavigation(t *testing.T) {
	e := newEnv(t)
	assistant := e.workspace(t, session.RoleAssistant)
	e.adapter.Add(e.ctx, models.CollectionLeads, map[string]any{"status": "Interested"})
	e.adapter.Add(e.ctx, models.CollectionLeads, map[string]any{"status": "Converted"})
	e.adapter.Add(e.ctx, models.CollectionReminders, map[string]any{"status": "Pending"})
	eventually(t, func() bool {
		return len(assistant.Data.Snapshot(models.CollectionLeads)) == 2 &&
			len(assistant.Data.Snapshot(models.CollectionReminders)) == 1
	})

	var pages []string
	badges := map[string]int{}
	for _, sec := range e.svc.Navigation(assistant) {
		for _, it := range sec.Items {
			pages = append(pages, it.Page)
			badges[it.Page] = it.Badge
		}
	}
	joined := strings.Join(pages, ",")
	if strings.Contains(joined, PageReports) || strings.Contains(joined, PageSettings) {
		t.Fatalf("assistant sees %s", joined)
	}
	if len(pages) != 11 {
		t.Fatalf("pages = %v", pages)
	}
	if badges[PageLeads] != 1 || badges[PageReminders] != 1 {
		t.Fatalf("badges = %v", badges)
	}
}

func TestTeamAndAboutPages(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleManager)
	e.svc.now = func() time.Time { return time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC) }

	if _, err := e.svc.Save(e.ctx, w, models.CollectionTeam, "", map[string]any{"name": "Suresh Babu", "attendance": "18", "salary": "15000"}); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return len(w.Data.Snapshot(models.CollectionTeam)) == 1 })

	got, err := e.svc.Render(e.ctx, w, PageTeam, Params{})
	if err != nil {
		t.Fatal(err)
	}
	row := got.(TeamPage).Items[0]
	if row.Attendance != "18/29" || row.Initials != "SB" || row.Salary != "₹15,000" {
		t.Fatalf("team row %+v", row)
	}

	about, _ := e.svc.Render(e.ctx, w, PageAbout, Params{})
	if a := about.(AboutPage); a.Business != BusinessName || a.Team != 1 {
		t.Fatalf("about %+v", a)
	}
}

func TestReportExport(t *testing.T) {
	e := newEnv(t)
	if _, err := e.adapter.Add(e.ctx, models.CollectionCustomers, map[string]any{"name": "Ravi", "totalPrice": 1000.0}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := e.svc.ReportExport(e.ctx, e.workspace(t, session.RoleAssistant)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("assistant export: %v", err)
	}

	w := e.workspace(t, session.RoleManager)
	eventually(t, func() bool { return len(w.Data.Snapshot(models.CollectionCustomers)) == 1 })
	summary, customers, err := e.svc.ReportExport(e.ctx, w)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if summary.Customers != 1 || len(customers) != 1 || customers[0].Name != "Ravi" {
		t.Errorf("summary = %+v customers = %+v", summary, customers)
	}
}

func TestDeletePhotoReturnsKey(t *testing.T) {
	e := newEnv(t)
	id, err := e.adapter.Add(e.ctx, models.CollectionGallery, map[string]any{"url": "https://cdn/x.png", "key": "gallery/2024/05/x.png"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.svc.DeletePhoto(e.ctx, e.workspace(t, session.RoleAssistant), id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("assistant delete: %v", err)
	}

	w := e.workspace(t, session.RoleManager)
	key, err := e.svc.DeletePhoto(e.ctx, w, id)
	if err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	if key != "gallery/2024/05/x.png" {
		t.Errorf("key = %q", key)
	}
	if e.count(t, models.CollectionGallery) != 0 {
		t.Error("gallery row should be gone")
	}
	if !hasToast(w, "Photo removed", toast.OK) {
		t.Error("expected removal toast")
	}
}

func TestClientCannotSetPhotoKey(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleManager)

	res, err := e.svc.Save(e.ctx, w, models.CollectionGallery, "", map[string]any{"url": "https://cdn/x.png", "key": "config/jwt_secret.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Save(e.ctx, w, models.CollectionGallery, res.ID, map[string]any{"key": "config/jwt_secret.txt"}); err != nil {
		t.Fatal(err)
	}
	key, err := e.svc.DeletePhoto(e.ctx, w, res.ID)
	if err != nil {
		t.Fatal(err)
	}
	if key != "" {
		t.Fatalf("client-supplied key reached delete: %q", key)
	}
}

func TestAddPhotoStoresUploadKey(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAdmin)

	res, err := e.svc.AddPhoto(e.ctx, w, "https://cdn/gallery/a.png", "gallery/2024/05/a.png", "Rooftop")
	if err != nil {
		t.Fatal(err)
	}
	key, err := e.svc.DeletePhoto(e.ctx, w, res.ID)
	if err != nil || key != "gallery/2024/05/a.png" {
		t.Fatalf("key = %q, err = %v", key, err)
	}
}

func TestRecordPaymentOnce(t *testing.T) {
	e := newEnv(t)
	w := e.workspace(t, session.RoleAdmin)
	entry := func() map[string]any {
		return map[string]any{"desc": "Online payment pay_1 - Ravi", "amount": 25000.0, "category": "Customer Payment"}
	}

	first, recorded, err := e.svc.RecordPayment(e.ctx, w, "pay_1", entry())
	if err != nil || recorded {
		t.Fatalf("first record: recorded=%v err=%v", recorded, err)
	}
	for i := 0; i < 2; i++ {
		again, recorded, err := e.svc.RecordPayment(e.ctx, w, "pay_1", entry())
		if err != nil || !recorded || again.ID != first.ID {
			t.Fatalf("replay %d: id=%q recorded=%v err=%v", i, again.ID, recorded, err)
		}
	}
	if n := e.count(t, models.CollectionIncome); n != 1 {
		t.Fatalf("income entries = %d, want 1", n)
	}

	// A fresh service still finds the payment on the ledger.
	other := NewService(e.adapter, nil, "")
	w2 := e.workspace(t, session.RoleAdmin)
	eventually(t, func() bool { return len(w2.Data.Snapshot(models.CollectionIncome)) == 1 })
	again, recorded, err := other.RecordPayment(e.ctx, w2, "pay_1", entry())
	if err != nil || !recorded || again.ID != first.ID {
		t.Fatalf("ledger lookup: id=%q recorded=%v err=%v", again.ID, recorded, err)
	}

	// Clients cannot forge the payment id through the revenue form.
	res, err := e.svc.AddLedger(e.ctx, w, models.CollectionIncome, map[string]any{"desc": "cash", "amount": 10.0, "paymentId": "pay_2"})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := e.mem.Get(e.ctx, models.CollectionIncome, res.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Fields["paymentId"]; ok {
		t.Fatalf("paymentId accepted from client: %v", doc.Fields)
	}
}
