// Package format renders engine output for display: currency strings and
// month labels. Locale and currency are always explicit inputs carried by
// a Preferences value; nothing in this package consults the process
// environment, so the same data formats identically on every deployment.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported display languages.
const (
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
)

// Preferences is the explicit, passed-in presentation configuration. It
// replaces any process-wide preference state: callers construct one (from
// a user profile or the defaults) and hand it to the formatting functions.
type Preferences struct {
	Language string `json:"language"`
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

// DefaultPreferences is the fixed system default: English, US dollars.
func DefaultPreferences() Preferences {
	return Preferences{Language: LanguageEnglish, Currency: "USD", Theme: "dark"}
}

// Tag resolves the language preference to a BCP 47 tag. Unknown values
// fall back to en-US rather than the platform locale.
func (p Preferences) Tag() language.Tag {
	switch p.Language {
	case LanguageFrench:
		return language.MustParse("fr-FR")
	default:
		return language.AmericanEnglish
	}
}

// Masked is what privacy mode renders instead of an amount.
const Masked = "••••••"

// FormatCurrency formats a monetary amount with the preference's currency code
// and locale-correct separators. USD, MAD and EUR are the codes the
// product promises; any valid ISO 4217 code works. Invalid codes fall
// back to a plain two-decimal rendering.
func (p Preferences) FormatCurrency(amount decimal.Decimal, privacy bool) string {
	if privacy {
		return Masked
	}
	unit, err := currency.ParseISO(p.Currency)
	if err != nil {
		return amount.StringFixed(2)
	}
	printer := message.NewPrinter(p.Tag())
	// currency.Amount converts through float64; only hand it values that
	// survive the round trip, otherwise keep the exact decimal digits.
	rounded := amount.Round(2)
	if f, _ := rounded.Float64(); decimal.NewFromFloat(f).Equal(rounded) {
		return printer.Sprintf("%v", currency.Symbol(unit.Amount(f)))
	}
	return printer.Sprintf("%v %s", currency.Symbol(unit), rounded.StringFixed(2))
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthLabeler returns the month-label function for the preference's
// language, suitable for engine.GroupByMonth. Labels use the UTC calendar
// so a transaction never shifts month across environments.
func (p Preferences) MonthLabeler() func(time.Time) string {
	switch p.Language {
	case LanguageFrench:
		return func(t time.Time) string {
			t = t.UTC()
			return fmt.Sprintf("%s %d", frenchMonths[int(t.Month())-1], t.Year())
		}
	default:
		return func(t time.Time) string {
			t = t.UTC()
			return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
		}
	}
}

// FormatDate renders a calendar date for table display.
func (p Preferences) FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	t = t.UTC()
	switch p.Language {
	case LanguageFrench:
		return t.Format("02/01/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}
