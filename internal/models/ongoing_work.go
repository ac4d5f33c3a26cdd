package models

const (
	WorkInProgress = "In Progress"
	WorkPending    = "Pending"
	WorkCompleted  = "Completed"
	WorkDelayed    = "Delayed"
)

var WorkStatuses = []string{WorkInProgress, WorkPending, WorkCompleted, WorkDelayed}

type OngoingWork struct {
	Meta         `mapstructure:",squash"`
	ProjectName  string  `mapstructure:"projectName" json:"projectName"`
	Status       string  `mapstructure:"status" json:"status"`
	Progress     float64 `mapstructure:"progress" json:"progress"`
	StartDate    string  `mapstructure:"startDate" json:"startDate"`
	InstallDate  string  `mapstructure:"installDate" json:"installDate"`
	QualityDate  string  `mapstructure:"qualityDate" json:"qualityDate"`
	WarrantyDate string  `mapstructure:"warrantyDate" json:"warrantyDate"`
}
