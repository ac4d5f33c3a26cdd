// Package reports renders the business summary as PDF and Excel files.
package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/aggregate"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/format"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
)

// Data is everything an export contains.
type Data struct {
	Summary     views.ReportsPage
	Outstanding []Outstanding
}

// Outstanding is one customer still owing money.
type Outstanding struct {
	Name    string
	Phone   string
	Type    string
	Total   decimal.Decimal
	Balance decimal.Decimal
}

// NewData pairs the summary with customers that have a positive balance,
// largest balance first.
func NewData(summary views.ReportsPage, customers []models.Customer) Data {
	var out []Outstanding
	for _, c := range customers {
		bal := aggregate.OutstandingBalance(c)
		if !bal.IsPositive() {
			continue
		}
		out = append(out, Outstanding{
			Name:    c.Name,
			Phone:   c.Phone,
			Type:    c.PaymentType,
			Total:   decimal.NewFromFloat(c.TotalPrice),
			Balance: bal,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Balance.GreaterThan(out[j].Balance) })
	return Data{Summary: summary, Outstanding: out}
}

// rupees spells the currency for fonts without the rupee glyph.
func rupees(d decimal.Decimal) string {
	return strings.Replace(format.INR(d), "₹", "Rs. ", 1)
}
