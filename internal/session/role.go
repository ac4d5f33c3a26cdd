package session

import "github.com/VyasaPraveen/Pragathi-CRM/internal/models"

// Role grants page and write affordances.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAssistant Role = "assistant"
)

// DefaultRole applies when no profile exists or it cannot be read.
const DefaultRole = RoleAssistant

// ParseRole maps a stored role name to a Role, falling back to DefaultRole.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleAssistant:
		return Role(s)
	}
	return DefaultRole
}

// deletable lists the collections whose rows can be deleted at all, and by whom.
var deletable = map[string][]Role{
	models.CollectionLeads:       {RoleAdmin},
	models.CollectionOngoingWork: {RoleAdmin},
	models.CollectionReminders:   {RoleAdmin},
	models.CollectionTeam:        {RoleAdmin},
	models.CollectionMaterials:   {RoleAdmin},
	models.CollectionGallery:     {RoleAdmin, RoleManager},
}

// restrictedEdits lists collections only some roles may create or edit in.
var restrictedEdits = map[string][]Role{
	models.CollectionMaterials: {RoleAdmin, RoleManager},
	models.CollectionTeam:      {RoleAdmin, RoleManager},
	models.CollectionGallery:   {RoleAdmin, RoleManager},
}

func (r Role) in(roles []Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// CanDelete reports whether the role sees a delete action on collection.
func (r Role) CanDelete(collection string) bool {
	return r.in(deletable[collection])
}

// CanEdit reports whether the role may create or modify rows in collection.
func (r Role) CanEdit(collection string) bool {
	roles, ok := restrictedEdits[collection]
	return !ok || r.in(roles)
}

// CanViewReports gates the Reports page.
func (r Role) CanViewReports() bool { return r != RoleAssistant }

// CanViewSettings gates the Settings page.
func (r Role) CanViewSettings() bool { return r != RoleAssistant }

// ShowFinancials gates revenue, expense and profit totals.
func (r Role) ShowFinancials() bool { return r == RoleAdmin }
