package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CategoryHousing   Category = "Housing"
	CategoryTransport Category = "Transport"
	CategoryFood      Category = "Food"
	CategorySalary    Category = "Salary"
	CategoryFreelance Category = "Freelance"
	CategoryOther     Category = "Other"
)

// AllCategoriesSentinel is the filter value that means "no category restriction".
const AllCategoriesSentinel = "All Categories"

// DateLayout is the wire format for calendar dates. Dates carry no
// time-of-day significance and are normalized to UTC midnight.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	Category string

	// Transaction is one income or expense record. Amount is a strictly
	// positive magnitude; the sign is derived from Type at read time.
	Transaction struct {
		ID        string          `json:"id"`
		Owner     string          `json:"-"`
		Title     string          `json:"title"`
		Amount    decimal.Decimal `json:"amount"`
		Type      TransactionType `json:"type"`
		Category  Category        `json:"category"`
		Date      time.Time       `json:"date"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	// TransactionInput carries the five editable fields. Create and update
	// share this structure and its validation, on purpose: the constraints
	// must never diverge between the two paths.
	TransactionInput struct {
		Title    string          `json:"title"`
		Amount   decimal.Decimal `json:"amount"`
		Type     TransactionType `json:"type"`
		Category Category        `json:"category"`
		Date     string          `json:"date"`
	}
)

// UnmarshalJSON accepts the amount as a JSON number or string, tolerating
// a decimal comma. Values ParseAmount rejects are left at zero so that
// Validate reports them as a field error instead of a decode failure.
func (in *TransactionInput) UnmarshalJSON(data []byte) error {
	type plain TransactionInput
	aux := struct {
		Amount json.RawMessage `json:"amount"`
		*plain
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.Amount) > 0 {
		raw := strings.Trim(string(aux.Amount), `"`)
		if d, err := ParseAmount(raw); err == nil {
			in.Amount = d
		} else if d, err := decimal.NewFromString(raw); err == nil {
			// Signed or zero values still land in the struct; Validate
			// rejects them with the amount constraint message.
			in.Amount = d
		} else {
			in.Amount = decimal.Zero
		}
	}
	return nil
}

// Categories lists the fixed category enumeration in declaration order.
func Categories() []Category {
	return []Category{
		CategoryHousing,
		CategoryTransport,
		CategoryFood,
		CategorySalary,
		CategoryFreelance,
		CategoryOther,
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseDate parses a YYYY-MM-DD calendar date and pins it to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Validate checks every field constraint and reports all violations at once,
// keyed by field name, so callers can render per-field messages.
func (in TransactionInput) Validate() *ValidationError {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Title) == "" {
		verr.Add("title", "Title is required")
	}
	if !in.Amount.IsPositive() {
		verr.Add("amount", "Amount must be positive")
	}
	if !in.Type.Valid() {
		verr.Add("type", "Type must be 'income' or 'expense'")
	}
	if !in.Category.Valid() {
		verr.Add("category", "Category must be one of the known categories")
	}
	if _, err := ParseDate(in.Date); err != nil {
		verr.Add("date", "Date must be a valid YYYY-MM-DD date")
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

// EffectiveDate returns the field used for filtering, sorting and month
// grouping. Transactions always group by the same date they are filtered
// on; CreatedAt is the fallback when no user date was recorded.
func (t Transaction) EffectiveDate() time.Time {
	if !t.Date.IsZero() {
		return t.Date
	}
	return t.CreatedAt
}

// SignedAmount is the amount with the sign implied by the type.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
