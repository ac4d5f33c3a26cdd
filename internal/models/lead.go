package models

import "github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"

// Lead statuses
const (
	LeadInterested    = "Interested"
	LeadNotInterested = "Not Interested"
	LeadConverted     = "Converted"
	LeadNotConverted  = "Not Converted"
)

// LeadStatuses in display order; also the conversion-report order.
var LeadStatuses = []string{LeadInterested, LeadConverted, LeadNotInterested, LeadNotConverted}

var LeadReferences = []string{"Website", "Referral", "Walk-in", "Facebook Ad", "Google Ad", "Other"}

var FollowUpStatuses = []string{"New Lead", "Interested", "Follow-up", "Negotiating", "No Response", "Completed"}

type Lead struct {
	Meta           `mapstructure:",squash"`
	Name           string `mapstructure:"name" json:"name"`
	Phone          string `mapstructure:"phone" json:"phone"`
	Address        string `mapstructure:"address" json:"address"`
	LeadReference  string `mapstructure:"leadReference" json:"leadReference"`
	DateGenerated  string `mapstructure:"dateGenerated" json:"dateGenerated"`
	FollowUpStatus string `mapstructure:"followUpStatus" json:"followUpStatus"`
	SiteVisit      string `mapstructure:"siteVisit" json:"siteVisit"`
	QuotationSent  string `mapstructure:"quotationSent" json:"quotationSent"`
	AdvancePaid    string `mapstructure:"advancePaid" json:"advancePaid"`
	Status         string `mapstructure:"status" json:"status"`
	Notes          string `mapstructure:"notes" json:"notes"`
}

func leadDefaults() map[string]any {
	return map[string]any{
		"leadReference":  "Website",
		"dateGenerated":  timeutil.Today(),
		"followUpStatus": "New Lead",
		"siteVisit":      "No",
		"quotationSent":  "No",
		"advancePaid":    "No",
		"status":         LeadInterested,
	}
}

// ConvertsToCustomer reports whether saving next over a lead whose stored
// status was prevStatus must auto-create a customer: only the edit that
// moves a lead into Converted with the advance paid.
func ConvertsToCustomer(next map[string]any, prevStatus string) bool {
	status, _ := next["status"].(string)
	advance, _ := next["advancePaid"].(string)
	return advance == "Yes" && status == LeadConverted && prevStatus != LeadConverted
}

// CustomerFromLead is the payload created for a converted lead: identity
// copied, every amount zeroed.
func CustomerFromLead(lead map[string]any) map[string]any {
	return map[string]any{
		"name":          lead["name"],
		"phone":         lead["phone"],
		"address":       lead["address"],
		"advanceAmount": 0,
		"secondPayment": 0,
		"thirdPayment":  0,
		"finalPayment":  0,
		"totalPrice":    0,
		"paymentType":   PaymentCash,
		"agreedPrice":   0,
		"bosAmount":     0,
		"kwRequired":    "",
		"status":        CustomerActive,
	}
}
