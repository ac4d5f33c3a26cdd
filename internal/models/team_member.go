package models

const (
	TeamActive   = "Active"
	TeamOnLeave  = "On Leave"
	TeamInactive = "Inactive"
)

var TeamStatuses = []string{TeamActive, TeamOnLeave, TeamInactive}

var TeamRoles = []string{"Electrician", "Helper", "Technician", "Manager", "Driver", "Other"}

type TeamMember struct {
	Meta       `mapstructure:",squash"`
	Name       string  `mapstructure:"name" json:"name"`
	Role       string  `mapstructure:"role" json:"role"`
	Status     string  `mapstructure:"status" json:"status"`
	Age        float64 `mapstructure:"age" json:"age"`
	Phone      string  `mapstructure:"phone" json:"phone"`
	Salary     float64 `mapstructure:"salary" json:"salary"`
	Attendance float64 `mapstructure:"attendance" json:"attendance"`
}
