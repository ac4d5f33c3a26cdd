package views

import (
	"context"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/aggregate"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/session"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/workspace"
)

// NavItem is one sidebar link.
type NavItem struct {
	Page  string `json:"page"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Badge int    `json:"badge,omitempty"`
}

// NavSection groups sidebar links.
type NavSection struct {
	Title string    `json:"title"`
	Items []NavItem `json:"items"`
}

type navEntry struct {
	NavItem
	hidden func(session.Role) bool
}

var sidebar = []struct {
	title string
	items []navEntry
}{
	{"Main", []navEntry{
		{NavItem: NavItem{Page: PageDashboard, Label: "Dashboard", Path: "/"}},
		{NavItem: NavItem{Page: PageLeads, Label: "Leads", Path: "/leads"}},
		{NavItem: NavItem{Page: PageCustomers, Label: "Customers", Path: "/customers"}},
	}},
	{"Operations", []navEntry{
		{NavItem: NavItem{Page: PageInstallations, Label: "Installations", Path: "/installations"}},
		{NavItem: NavItem{Page: PageOngoingWork, Label: "Ongoing Work", Path: "/ongoing"}},
		{NavItem: NavItem{Page: PageMaterials, Label: "Materials", Path: "/materials"}},
	}},
	{"Finance", []navEntry{
		{NavItem: NavItem{Page: PageRevenue, Label: "Revenue", Path: "/revenue"}},
		{NavItem: NavItem{Page: PageReports, Label: "Reports", Path: "/reports"}, hidden: func(r session.Role) bool { return !r.CanViewReports() }},
	}},
	{"People", []navEntry{
		{NavItem: NavItem{Page: PageTeam, Label: "Team", Path: "/team"}},
		{NavItem: NavItem{Page: PageReminders, Label: "Reminders", Path: "/reminders"}},
	}},
	{"Company", []navEntry{
		{NavItem: NavItem{Page: PageAbout, Label: "About", Path: "/about"}},
		{NavItem: NavItem{Page: PageGallery, Label: "Gallery", Path: "/gallery"}},
		{NavItem: NavItem{Page: PageSettings, Label: "Settings", Path: "/settings"}, hidden: func(r session.Role) bool { return !r.CanViewSettings() }},
	}},
}

// Navigation returns the sidebar for the session's role. Leads show the
// count of Interested leads, Reminders the count of Pending ones.
func (s *Service) Navigation(w *workspace.Workspace) []NavSection {
	badges := map[string]int{
		PageLeads: aggregate.Count(models.DecodeAll[models.Lead](w.Data.Snapshot(models.CollectionLeads)),
			func(l models.Lead) bool { return l.Status == models.LeadInterested }),
		PageReminders: aggregate.Count(models.DecodeAll[models.Reminder](w.Data.Snapshot(models.CollectionReminders)),
			func(r models.Reminder) bool { return r.Status == models.ReminderPending }),
	}

	role := w.Session.Role
	out := make([]NavSection, 0, len(sidebar))
	for _, sec := range sidebar {
		items := make([]NavItem, 0, len(sec.items))
		for _, e := range sec.items {
			if e.hidden != nil && e.hidden(role) {
				continue
			}
			item := e.NavItem
			item.Badge = badges[item.Page]
			items = append(items, item)
		}
		out = append(out, NavSection{Title: sec.title, Items: items})
	}
	return out
}

// NavCollections feed the sidebar badges.
var NavCollections = []string{models.CollectionLeads, models.CollectionReminders}

// Sidebar makes the badge collections live, waits for them and returns
// Navigation.
func (s *Service) Sidebar(ctx context.Context, w *workspace.Workspace) ([]NavSection, error) {
	release, err := acquire(ctx, w, NavCollections)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.Navigation(w), nil
}
