// Package aggregate computes the derived figures pages show: payment
// balances, revenue totals, conversion shares and stock health. Money is
// summed in decimal so long ledgers do not drift.
package aggregate

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
)

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Paid is the sum of the four cash installments.
func Paid(c models.Customer) decimal.Decimal {
	return dec(c.AdvanceAmount).Add(dec(c.SecondPayment)).Add(dec(c.ThirdPayment)).Add(dec(c.FinalPayment))
}

// Balance is total price minus the four installments.
func Balance(c models.Customer) decimal.Decimal {
	return dec(c.TotalPrice).Sub(Paid(c))
}

// OutstandingBalance is the amount still owed, using the Finance formula
// (advance received from the lender plus the final amount) for financed
// customers and the installment sum otherwise.
func OutstandingBalance(c models.Customer) decimal.Decimal {
	if c.PaymentType == models.PaymentFinance {
		return dec(c.TotalPrice).Sub(dec(c.AdvanceReceivedAmount).Add(dec(c.FinalAmount)))
	}
	return Balance(c)
}

// PendingPayments counts customers with a positive outstanding balance.
func PendingPayments(customers []models.Customer) int {
	n := 0
	for _, c := range customers {
		if OutstandingBalance(c).IsPositive() {
			n++
		}
	}
	return n
}

// Sum adds ledger amounts.
func Sum(entries []models.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(dec(e.Amount))
	}
	return total
}

// Revenue holds income, expenses and their difference.
type Revenue struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// RevenueTotals sums both ledgers.
func RevenueTotals(income, expenses []models.LedgerEntry) Revenue {
	in, out := Sum(income), Sum(expenses)
	return Revenue{Income: in, Expenses: out, Net: in.Sub(out)}
}

// StatusShare is one row of the conversion report.
type StatusShare struct {
	Status  string `json:"status"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// ConversionRates returns count and rounded share of every lead status, in
// the report's status order. Percentages are 0 when there are no leads.
func ConversionRates(leads []models.Lead) []StatusShare {
	counts := CountBy(leads, func(l models.Lead) string { return l.Status })
	out := make([]StatusShare, 0, len(models.LeadStatuses))
	for _, s := range models.LeadStatuses {
		n := counts[s]
		pct := 0
		if len(leads) > 0 {
			pct = int(math.Round(float64(n) / float64(len(leads)) * 100))
		}
		out = append(out, StatusShare{Status: s, Count: n, Percent: pct})
	}
	return out
}

// CountBy tallies items by key.
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		counts[key(it)]++
	}
	return counts
}

// Count returns how many items satisfy pred.
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// Stock health bands on a material's balance.
type StockHealth string

const (
	StockLow    StockHealth = "low"
	StockMedium StockHealth = "medium"
	StockGood   StockHealth = "good"
)

const (
	LowStockThreshold    = 10
	MediumStockThreshold = 30
)

// Health classifies a balance: below 10 low, below 30 medium, else good.
func Health(balance float64) StockHealth {
	switch {
	case balance < LowStockThreshold:
		return StockLow
	case balance < MediumStockThreshold:
		return StockMedium
	default:
		return StockGood
	}
}

// PendingInstallations counts installations below 100% progress.
func PendingInstallations(items []models.Installation) int {
	return Count(items, models.Installation.Pending)
}
