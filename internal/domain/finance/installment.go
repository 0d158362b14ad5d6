package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one dated slice of a split amount
type Installment struct {
	Number  int             `json:"number"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

var hundred = decimal.NewFromInt(100)

// GenerateInstallments splits total into count installments spaced
// intervalDays apart, the first one intervalDays after startDate. Every
// installment but the last is total/count floored to cents; the last absorbs
// the remainder so the amounts always sum to total.
func GenerateInstallments(total decimal.Decimal, count, intervalDays int, startDate time.Time) []Installment {
	if count <= 0 {
		return []Installment{}
	}

	n := decimal.NewFromInt(int64(count))
	base := total.Div(n).Mul(hundred).Floor().Div(hundred)
	last := base.Add(total.Sub(base.Mul(n)))

	installments := make([]Installment, count)
	for i := 0; i < count; i++ {
		amount := base
		if i == count-1 {
			amount = last
		}
		installments[i] = Installment{
			Number:  i + 1,
			DueDate: startDate.AddDate(0, 0, intervalDays*(i+1)),
			Amount:  amount,
		}
	}
	return installments
}

// SumInstallments totals the installment amounts
func SumInstallments(installments []Installment) decimal.Decimal {
	sum := decimal.Zero
	for _, inst := range installments {
		sum = sum.Add(inst.Amount)
	}
	return sum
}
