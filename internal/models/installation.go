package models

// Compliance stages tracked per installation, in checklist order.
var ComplianceStages = []string{
	"discomFeasibility", "docSubmission", "discomInspection",
	"meterChange", "flaggingStatus", "subsidyStatus",
}

var RoofTypes = []string{"RCC", "Sheet", "Tile"}

type Installation struct {
	Meta               `mapstructure:",squash"`
	CustomerName       string  `mapstructure:"customerName" json:"customerName"`
	Phone              string  `mapstructure:"phone" json:"phone"`
	Address            string  `mapstructure:"address" json:"address"`
	RoofType           string  `mapstructure:"roofType" json:"roofType"`
	Floors             float64 `mapstructure:"floors" json:"floors"`
	StructureType      string  `mapstructure:"structureType" json:"structureType"`
	StartDate          string  `mapstructure:"startDate" json:"startDate"`
	TotalDays          string  `mapstructure:"totalDays" json:"totalDays"`
	TeamLeader         string  `mapstructure:"teamLeader" json:"teamLeader"`
	NumPeople          string  `mapstructure:"numPeople" json:"numPeople"`
	MaterialDispatched string  `mapstructure:"materialDispatched" json:"materialDispatched"`
	Progress           float64 `mapstructure:"progress" json:"progress"`
	QualityInspection  string  `mapstructure:"qualityInspection" json:"qualityInspection"`
	GuaranteeCard      string  `mapstructure:"guaranteeCard" json:"guaranteeCard"`
	CustomerReference  string  `mapstructure:"customerReference" json:"customerReference"`

	DiscomFeasibility     string `mapstructure:"discomFeasibility" json:"discomFeasibility"`
	DiscomFeasibilityDate string `mapstructure:"discomFeasibilityDate" json:"discomFeasibilityDate,omitempty"`
	DocSubmission         string `mapstructure:"docSubmission" json:"docSubmission"`
	DocSubmissionDate     string `mapstructure:"docSubmissionDate" json:"docSubmissionDate,omitempty"`
	DiscomInspection      string `mapstructure:"discomInspection" json:"discomInspection"`
	DiscomInspectionDate  string `mapstructure:"discomInspectionDate" json:"discomInspectionDate,omitempty"`
	MeterChange           string `mapstructure:"meterChange" json:"meterChange"`
	MeterChangeDate       string `mapstructure:"meterChangeDate" json:"meterChangeDate,omitempty"`
	FlaggingStatus        string `mapstructure:"flaggingStatus" json:"flaggingStatus"`
	FlaggingStatusDate    string `mapstructure:"flaggingStatusDate" json:"flaggingStatusDate,omitempty"`
	SubsidyStatus         string `mapstructure:"subsidyStatus" json:"subsidyStatus"`
	SubsidyStatusDate     string `mapstructure:"subsidyStatusDate" json:"subsidyStatusDate,omitempty"`

	FirstServiceDate string `mapstructure:"firstServiceDate" json:"firstServiceDate"`
	NextServiceDate  string `mapstructure:"nextServiceDate" json:"nextServiceDate"`

	ACCableQty  string `mapstructure:"acCableQty" json:"acCableQty,omitempty"`
	ACCableSize string `mapstructure:"acCableSize" json:"acCableSize,omitempty"`
	DCCableQty  string `mapstructure:"dcCableQty" json:"dcCableQty,omitempty"`
	DCCableSize string `mapstructure:"dcCableSize" json:"dcCableSize,omitempty"`
	EarthCable  string `mapstructure:"earthCable" json:"earthCable,omitempty"`
	UPVCPipes   string `mapstructure:"upvcPipes" json:"upvcPipes,omitempty"`

	Images            []string `mapstructure:"images" json:"images,omitempty"`
	Notes             string   `mapstructure:"notes" json:"notes,omitempty"`
	ReferenceLeadID   string   `mapstructure:"referenceLeadId" json:"referenceLeadId,omitempty"`
	ReferenceLeadName string   `mapstructure:"referenceLeadName" json:"referenceLeadName,omitempty"`
}

// Pending reports whether work remains (progress below 100).
func (i Installation) Pending() bool {
	return i.Progress < 100
}

func installationDefaults() map[string]any {
	return map[string]any{
		"roofType":           "RCC",
		"floors":             1,
		"structureType":      "Flat",
		"materialDispatched": "No",
		"progress":           0,
		"qualityInspection":  "Pending",
		"guaranteeCard":      "No",
		"customerReference":  "No",
		"discomFeasibility":  "Pending",
		"docSubmission":      "Pending",
		"discomInspection":   "Pending",
		"meterChange":        "Pending",
		"flaggingStatus":     "Pending",
		"subsidyStatus":      "Not Applied",
	}
}
