package models

// LedgerEntry is one income or expense line. PaymentID is set on income
// recorded from a verified online payment.
type LedgerEntry struct {
	Meta      `mapstructure:",squash"`
	Desc      string  `mapstructure:"desc" json:"desc"`
	Amount    float64 `mapstructure:"amount" json:"amount"`
	Date      string  `mapstructure:"date" json:"date"`
	Category  string  `mapstructure:"category" json:"category"`
	PaymentID string  `mapstructure:"paymentId" json:"paymentId,omitempty"`
}

// LedgerCollection maps the revenue form's entry type to its collection.
func LedgerCollection(entryType string) (string, bool) {
	switch entryType {
	case CollectionIncome:
		return CollectionIncome, true
	case "expense", CollectionExpenses:
		return CollectionExpenses, true
	}
	return "", false
}
