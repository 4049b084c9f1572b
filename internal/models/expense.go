package models

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spending record owned by one account.
type Expense struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"category,omitempty"`
	OwnerID      string    `json:"ownerId,omitempty"`
}

// NewExpense validates its inputs and returns an Expense whose amount is
// rounded to two decimal places. The category must already exist; only its
// ID is carried here.
func NewExpense(description string, amount float64, categoryID string, date time.Time) (Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Expense{}, invalid("description", "A descrição da despesa não pode ser vazia")
	}
	rounded, err := RoundAmount(amount)
	if err != nil {
		return Expense{}, err
	}
	if strings.TrimSpace(categoryID) == "" {
		return Expense{}, invalid("categoryId", "A categoria precisa ser salva antes da despesa.")
	}
	if date.IsZero() {
		return Expense{}, invalid("date", "A data da despesa é obrigatória")
	}
	return Expense{
		Description: description,
		Amount:      rounded.InexactFloat64(),
		CategoryID:  categoryID,
		Date:        date.UTC(),
	}, nil
}

// Cents returns the amount as an integer number of cents.
func (e Expense) Cents() int64 {
	return decimal.NewFromFloat(e.Amount).Shift(2).Round(0).IntPart()
}

// RoundAmount rounds a monetary amount to two decimal places. Amounts that are
// not strictly positive after rounding are rejected.
func RoundAmount(amount float64) (decimal.Decimal, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return decimal.Zero, invalid("amount", "O valor da despesa deve ser maior que zero.")
	}
	rounded := decimal.NewFromFloat(amount).Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, invalid("amount", "O valor da despesa deve ser maior que zero.")
	}
	return rounded, nil
}

// AmountFromCents converts stored cents back to a two-decimal amount.
func AmountFromCents(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
