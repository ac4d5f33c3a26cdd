package models

const (
	ReminderPending = "Pending"
	ReminderSent    = "Sent"
	ReminderDone    = "Done"
)

var ReminderStatuses = []string{ReminderPending, ReminderSent, ReminderDone}

var ReminderTypes = []string{"Payment Reminder", "Service Due", "Follow-up", "Warranty", "Other"}

type Reminder struct {
	Meta     `mapstructure:",squash"`
	Type     string `mapstructure:"type" json:"type"`
	Customer string `mapstructure:"customer" json:"customer"`
	Phone    string `mapstructure:"phone" json:"phone"`
	Date     string `mapstructure:"date" json:"date"`
	Message  string `mapstructure:"message" json:"message"`
	Status   string `mapstructure:"status" json:"status"`
}

// CanSend reports whether the outbound-message action applies: still
// pending and a phone number to send to.
func (r Reminder) CanSend() bool {
	return r.Status == ReminderPending && r.Phone != ""
}
