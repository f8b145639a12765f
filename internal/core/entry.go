package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxNoteLength caps the free-text note of a transaction.
const MaxNoteLength = 100

// Entry is a transaction as typed by the user, before validation.
type Entry struct {
	CategoryID int64
	Title      string
	Type       TransactionType
	Amount     string // positive magnitude, dot or comma decimal separator
	Date       string // date token; empty means today
	Time       string // time token; empty means now
	Note       string
}

// ValidateEntry is the pre-write gate. It returns the parsed magnitude or a
// *ValidationError naming the first offending field.
func ValidateEntry(e Entry) (decimal.Decimal, error) {
	if e.CategoryID <= 0 {
		return decimal.Zero, &ValidationError{Field: "category", Err: ErrMissingCategory}
	}
	if strings.TrimSpace(e.Title) == "" {
		return decimal.Zero, &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if !e.Type.Valid() {
		return decimal.Zero, &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	magnitude, err := ParseAmount(e.Amount)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Err: err}
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return decimal.Zero, &ValidationError{Field: "note", Err: ErrNoteTooLong}
	}
	return magnitude, nil
}

// BuildTransaction validates e and produces the row to store. now fills the
// date and time tokens when the entry leaves them empty.
func BuildTransaction(e Entry, now time.Time) (Transaction, error) {
	magnitude, err := ValidateEntry(e)
	if err != nil {
		return Transaction{}, err
	}
	date := strings.TrimSpace(e.Date)
	if date == "" {
		date = FormatDate(now)
	}
	clock := strings.TrimSpace(e.Time)
	if clock == "" {
		clock = FormatTime(now)
	}
	return Transaction{
		CategoryID: e.CategoryID,
		Title:      strings.TrimSpace(e.Title),
		Type:       e.Type,
		Time:       clock,
		Amount:     e.Type.SignedAmount(magnitude),
		Date:       date,
		Note:       e.Note,
	}, nil
}

// ValidateCategoryName is the caller-side gate for new categories; the
// registry itself accepts any name.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyCategoryName}
	}
	return nil
}
