package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/aggregate"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/listing"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/whatsapp"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

// Page identifiers, as used in /api/pages/{page}.
const (
	PageDashboard     = "dashboard"
	PageLeads         = "leads"
	PageCustomers     = "customers"
	PageInstallations = "installations"
	PageOngoingWork   = "ongoing"
	PageMaterials     = "materials"
	PageRevenue       = "revenue"
	PageReports       = "reports"
	PageTeam          = "team"
	PageReminders     = "reminders"
	PageAbout         = "about"
	PageGallery       = "gallery"
	PageSettings      = "settings"
)

// BusinessName is shown on the About page and report headers.
const BusinessName = "Pragathi Power Solutions"

// recentCount is how many leads and reminders the dashboard previews.
const recentCount = 5

// PageCollections lists what each page reads.
var PageCollections = map[string][]string{
	PageDashboard: {
		models.CollectionLeads, models.CollectionCustomers, models.CollectionInstallations,
		models.CollectionIncome, models.CollectionExpenses, models.CollectionMaterials,
		models.CollectionReminders,
	},
	PageLeads:         {models.CollectionLeads},
	PageCustomers:     {models.CollectionCustomers},
	PageInstallations: {models.CollectionInstallations},
	PageOngoingWork:   {models.CollectionOngoingWork},
	PageMaterials:     {models.CollectionMaterials},
	PageRevenue:       {models.CollectionIncome, models.CollectionExpenses},
	PageReports: {
		models.CollectionLeads, models.CollectionCustomers, models.CollectionInstallations,
		models.CollectionIncome, models.CollectionExpenses,
	},
	PageTeam:      {models.CollectionTeam},
	PageReminders: {models.CollectionReminders},
	PageAbout:     {models.CollectionCustomers, models.CollectionInstallations, models.CollectionTeam},
	PageGallery:   {models.CollectionGallery},
	PageSettings:  {},
}

// Render builds the view model for page.
func (s *Service) Render(ctx context.Context, w *workspace.Workspace, page string, p Params) (any, error) {
	collections, ok := PageCollections[page]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	role := w.Session.Role
	if (page == PageReports && !role.CanViewReports()) || (page == PageSettings && !role.CanViewSettings()) {
		return nil, ErrForbidden
	}

	release, err := acquire(ctx, w, collections)
	if err != nil {
		return nil, err
	}
	defer release()

	switch page {
	case PageDashboard:
		return s.dashboard(w), nil
	case PageLeads:
		return s.leads(w, p), nil
	case PageCustomers:
		return s.customers(w, p), nil
	case PageInstallations:
		return s.installations(w, p), nil
	case PageOngoingWork:
		return s.ongoingWork(w, p), nil
	case PageMaterials:
		return s.materials(w, p), nil
	case PageRevenue:
		return s.revenue(w, p), nil
	case PageReports:
		return s.Reports(w), nil
	case PageTeam:
		return s.team(w, p), nil
	case PageReminders:
		return s.reminders(w, p), nil
	case PageAbout:
		return s.about(w), nil
	case PageGallery:
		return s.gallery(w), nil
	default:
		return s.settings(w), nil
	}
}

func query(collection string, p Params, visible int) listing.Query {
	schema, _ := models.Lookup(collection)
	q := listing.Query{
		Term:    p.Search,
		Fields:  schema.SearchFields,
		Visible: visible,
	}
	if schema.StatusField != "" {
		q.StatusField = schema.StatusField
		q.Status = p.Status
	}
	return q
}

func decoded[T any](recs []docstore.Record) []T {
	return models.DecodeAll[T](recs)
}

// Dashboard is the landing page.
type Dashboard struct {
	TotalLeads           int               `json:"totalLeads"`
	Converted            int               `json:"converted"`
	Interested           int               `json:"interested"`
	Revenue              *RevenueTotals    `json:"revenue,omitempty"`
	PendingInstallations int               `json:"pendingInstallations"`
	PendingPayments      int               `json:"pendingPayments"`
	RecentLeads          []models.Lead     `json:"recentLeads"`
	RecentReminders      []models.Reminder `json:"recentReminders"`
	Installations        []InstallationRow `json:"installations"`
	StockAlerts          []MaterialRow     `json:"stockAlerts"`
}

// RevenueTotals are the admin-only money cards.
type RevenueTotals struct {
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Net      Money `json:"net"`
}

func revenueTotals(income, expenses []models.LedgerEntry) *RevenueTotals {
	r := aggregate.RevenueTotals(income, expenses)
	return &RevenueTotals{Income: money(r.Income), Expenses: money(r.Expenses), Net: money(r.Net)}
}

func (s *Service) dashboard(w *workspace.Workspace) Dashboard {
	leads := decoded[models.Lead](w.Data.Snapshot(models.CollectionLeads))
	customers := decoded[models.Customer](w.Data.Snapshot(models.CollectionCustomers))
	installations := decoded[models.Installation](w.Data.Snapshot(models.CollectionInstallations))
	reminders := decoded[models.Reminder](w.Data.Snapshot(models.CollectionReminders))
	materials := decoded[models.Material](w.Data.Snapshot(models.CollectionMaterials))

	byStatus := aggregate.CountBy(leads, func(l models.Lead) string { return l.Status })
	d := Dashboard{
		TotalLeads:           len(leads),
		Converted:            byStatus[models.LeadConverted],
		Interested:           byStatus[models.LeadInterested],
		PendingInstallations: aggregate.PendingInstallations(installations),
		PendingPayments:      aggregate.PendingPayments(customers),
		RecentLeads:          head(leads, recentCount),
		RecentReminders:      head(reminders, recentCount),
		Installations:        installationRows(installations),
		StockAlerts:          materialRows(materials),
	}
	if w.Session.Role.ShowFinancials() {
		d.Revenue = revenueTotals(
			decoded[models.LedgerEntry](w.Data.Snapshot(models.CollectionIncome)),
			decoded[models.LedgerEntry](w.Data.Snapshot(models.CollectionExpenses)),
		)
	}
	return d
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// LeadsPage lists leads with status filter and search.
type LeadsPage struct {
	List[models.Lead]
	Statuses   []string `json:"statuses"`
	References []string `json:"references"`
	FollowUps  []string `json:"followUps"`
	Actions    Actions  `json:"actions"`
}

func (s *Service) leads(w *workspace.Workspace, p Params) LeadsPage {
	q := query(models.CollectionLeads, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionLeads), q)
	return LeadsPage{
		List:       newList(page, q, decoded[models.Lead]),
		Statuses:   models.LeadStatuses,
		References: models.LeadReferences,
		FollowUps:  models.FollowUpStatuses,
		Actions:    actionsFor(w.Session.Role, models.CollectionLeads),
	}
}

// CustomerRow adds payment figures to a customer.
type CustomerRow struct {
	models.Customer
	Paid        Money `json:"paid"`
	Balance     Money `json:"balance"`
	Outstanding Money `json:"outstanding"`
	HasBalance  bool  `json:"hasBalance"`
}

func customerRows(recs []docstore.Record) []CustomerRow {
	customers := decoded[models.Customer](recs)
	out := make([]CustomerRow, len(customers))
	for i, c := range customers {
		outstanding := aggregate.OutstandingBalance(c)
		out[i] = CustomerRow{
			Customer:    c,
			Paid:        money(aggregate.Paid(c)),
			Balance:     money(aggregate.Balance(c)),
			Outstanding: money(outstanding),
			HasBalance:  outstanding.IsPositive(),
		}
	}
	return out
}

// CustomersPage lists customers with balances.
type CustomersPage struct {
	List[CustomerRow]
	PaymentTypes []string `json:"paymentTypes"`
	Actions      Actions  `json:"actions"`
}

func (s *Service) customers(w *workspace.Workspace, p Params) CustomersPage {
	q := query(models.CollectionCustomers, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionCustomers), q)
	return CustomersPage{
		List:         newList(page, q, customerRows),
		PaymentTypes: []string{models.PaymentCash, models.PaymentFinance},
		Actions:      actionsFor(w.Session.Role, models.CollectionCustomers),
	}
}

// InstallationRow adds the pending flag.
type InstallationRow struct {
	models.Installation
	Pending bool `json:"pending"`
}

func installationRows(items []models.Installation) []InstallationRow {
	out := make([]InstallationRow, len(items))
	for i, it := range items {
		out[i] = InstallationRow{Installation: it, Pending: it.Pending()}
	}
	return out
}

// InstallationsPage lists installations.
type InstallationsPage struct {
	List[InstallationRow]
	Stages    []string `json:"stages"`
	RoofTypes []string `json:"roofTypes"`
	Actions   Actions  `json:"actions"`
}

func (s *Service) installations(w *workspace.Workspace, p Params) InstallationsPage {
	q := query(models.CollectionInstallations, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionInstallations), q)
	return InstallationsPage{
		List: newList(page, q, func(recs []docstore.Record) []InstallationRow {
			return installationRows(decoded[models.Installation](recs))
		}),
		Stages:    models.ComplianceStages,
		RoofTypes: models.RoofTypes,
		Actions:   actionsFor(w.Session.Role, models.CollectionInstallations),
	}
}

// OngoingWorkPage lists projects.
type OngoingWorkPage struct {
	List[models.OngoingWork]
	Statuses []string `json:"statuses"`
	Actions  Actions  `json:"actions"`
}

func (s *Service) ongoingWork(w *workspace.Workspace, p Params) OngoingWorkPage {
	q := query(models.CollectionOngoingWork, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionOngoingWork), q)
	return OngoingWorkPage{
		List:     newList(page, q, decoded[models.OngoingWork]),
		Statuses: models.WorkStatuses,
		Actions:  actionsFor(w.Session.Role, models.CollectionOngoingWork),
	}
}

// MaterialRow adds stock health.
type MaterialRow struct {
	models.Material
	Health aggregate.StockHealth `json:"health"`
}

func materialRows(items []models.Material) []MaterialRow {
	out := make([]MaterialRow, len(items))
	for i, m := range items {
		out[i] = MaterialRow{Material: m, Health: aggregate.Health(m.Balance)}
	}
	return out
}

// MaterialsPage lists stock.
type MaterialsPage struct {
	List[MaterialRow]
	Actions Actions `json:"actions"`
}

func (s *Service) materials(w *workspace.Workspace, p Params) MaterialsPage {
	q := query(models.CollectionMaterials, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionMaterials), q)
	return MaterialsPage{
		List: newList(page, q, func(recs []docstore.Record) []MaterialRow {
			return materialRows(decoded[models.Material](recs))
		}),
		Actions: actionsFor(w.Session.Role, models.CollectionMaterials),
	}
}

// RevenuePage shows both ledgers, each paginated on its own.
type RevenuePage struct {
	Totals   *RevenueTotals           `json:"totals,omitempty"`
	Income   List[models.LedgerEntry] `json:"income"`
	Expenses List[models.LedgerEntry] `json:"expenses"`
	Actions  Actions                  `json:"actions"`
}

func (s *Service) revenue(w *workspace.Workspace, p Params) RevenuePage {
	incomeRecs := w.Data.Snapshot(models.CollectionIncome)
	expenseRecs := w.Data.Snapshot(models.CollectionExpenses)

	iq := query(models.CollectionIncome, Params{}, p.IncomeVisible)
	eq := query(models.CollectionExpenses, Params{}, p.ExpenseVisible)
	out := RevenuePage{
		Income:   newList(listing.Apply(incomeRecs, iq), iq, decoded[models.LedgerEntry]),
		Expenses: newList(listing.Apply(expenseRecs, eq), eq, decoded[models.LedgerEntry]),
		Actions:  Actions{CanCreate: true},
	}
	if w.Session.Role.ShowFinancials() {
		out.Totals = revenueTotals(decoded[models.LedgerEntry](incomeRecs), decoded[models.LedgerEntry](expenseRecs))
	}
	return out
}

// ReportsPage summarizes the business.
type ReportsPage struct {
	TotalLeads    int                     `json:"totalLeads"`
	Customers     int                     `json:"customers"`
	Installations int                     `json:"installations"`
	Conversion    []aggregate.StatusShare `json:"conversion"`
	Totals        RevenueTotals           `json:"totals"`
	GeneratedAt   string                  `json:"generatedAt"`
}

// Reports builds the reports summary from the workspace's current data.
// Exports use it directly.
func (s *Service) Reports(w *workspace.Workspace) ReportsPage {
	leads := decoded[models.Lead](w.Data.Snapshot(models.CollectionLeads))
	return ReportsPage{
		TotalLeads:    len(leads),
		Customers:     len(w.Data.Snapshot(models.CollectionCustomers)),
		Installations: len(w.Data.Snapshot(models.CollectionInstallations)),
		Conversion:    aggregate.ConversionRates(leads),
		Totals: *revenueTotals(
			decoded[models.LedgerEntry](w.Data.Snapshot(models.CollectionIncome)),
			decoded[models.LedgerEntry](w.Data.Snapshot(models.CollectionExpenses)),
		),
		GeneratedAt: s.now().Format(timeutil.DateTimeLayout),
	}
}

// TeamRow adds display fields to a member.
type TeamRow struct {
	models.TeamMember
	Initials   string `json:"initials"`
	Attendance string `json:"attendanceLabel"`
	Salary     string `json:"salaryLabel"`
}

// TeamPage lists members with attendance against the current month.
type TeamPage struct {
	List[TeamRow]
	DaysInMonth int      `json:"daysInMonth"`
	Roles       []string `json:"roles"`
	Statuses    []string `json:"statuses"`
	Actions     Actions  `json:"actions"`
}

func (s *Service) team(w *workspace.Workspace, p Params) TeamPage {
	days := timeutil.DaysInMonth(s.now())
	q := query(models.CollectionTeam, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionTeam), q)
	return TeamPage{
		List: newList(page, q, func(recs []docstore.Record) []TeamRow {
			members := decoded[models.TeamMember](recs)
			out := make([]TeamRow, len(members))
			for i, m := range members {
				out[i] = TeamRow{
					TeamMember: m,
					Initials:   format.Initials(m.Name),
					Attendance: strconv.FormatFloat(m.Attendance, 'f', -1, 64) + "/" + strconv.Itoa(days),
					Salary:     format.Currency(m.Salary),
				}
			}
			return out
		}),
		DaysInMonth: days,
		Roles:       models.TeamRoles,
		Statuses:    models.TeamStatuses,
		Actions:     actionsFor(w.Session.Role, models.CollectionTeam),
	}
}

// ReminderRow adds the send affordance.
type ReminderRow struct {
	models.Reminder
	CanSend bool   `json:"canSend"`
	Link    string `json:"link,omitempty"`
}

// RemindersPage lists reminders.
type RemindersPage struct {
	List[ReminderRow]
	Types    []string `json:"types"`
	Statuses []string `json:"statuses"`
	Actions  Actions  `json:"actions"`
}

func (s *Service) reminders(w *workspace.Workspace, p Params) RemindersPage {
	q := query(models.CollectionReminders, p, p.Visible)
	page := listing.Apply(w.Data.Snapshot(models.CollectionReminders), q)
	return RemindersPage{
		List: newList(page, q, func(recs []docstore.Record) []ReminderRow {
			items := decoded[models.Reminder](recs)
			out := make([]ReminderRow, len(items))
			for i, r := range items {
				out[i] = ReminderRow{Reminder: r, CanSend: r.CanSend()}
				if out[i].CanSend {
					out[i].Link = whatsapp.Link(s.countryCode, r.Phone, r.Message)
				}
			}
			return out
		}),
		Types:    models.ReminderTypes,
		Statuses: models.ReminderStatuses,
		Actions:  actionsFor(w.Session.Role, models.CollectionReminders),
	}
}

// AboutPage shows company facts and counts.
type AboutPage struct {
	Business      string `json:"business"`
	Tagline       string `json:"tagline"`
	Location      string `json:"location"`
	Customers     int    `json:"customers"`
	Installations int    `json:"installations"`
	Team          int    `json:"team"`
}

func (s *Service) about(w *workspace.Workspace) AboutPage {
	return AboutPage{
		Business:      BusinessName,
		Tagline:       "Power from the Sun... To Power Every One",
		Location:      "Since 2012 | Tirupati, Andhra Pradesh",
		Customers:     len(w.Data.Snapshot(models.CollectionCustomers)),
		Installations: len(w.Data.Snapshot(models.CollectionInstallations)),
		Team:          len(w.Data.Snapshot(models.CollectionTeam)),
	}
}

// GalleryPage lists photos.
type GalleryPage struct {
	Items   []models.GalleryItem `json:"items"`
	Empty   bool                 `json:"empty"`
	Actions Actions              `json:"actions"`
}

func (s *Service) gallery(w *workspace.Workspace) GalleryPage {
	items := decoded[models.GalleryItem](w.Data.Snapshot(models.CollectionGallery))
	return GalleryPage{
		Items:   items,
		Empty:   len(items) == 0,
		Actions: actionsFor(w.Session.Role, models.CollectionGallery),
	}
}

// SettingsPage shows the signed-in account.
type SettingsPage struct {
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Role  session.Role `json:"role"`
}

func (s *Service) settings(w *workspace.Workspace) SettingsPage {
	name := w.Session.Name
	if name == "" {
		name = "Not set"
	}
	return SettingsPage{Email: w.Session.Email, Name: name, Role: w.Session.Role}
}
