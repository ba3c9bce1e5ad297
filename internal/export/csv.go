// Package export serializes transaction lists for download. The CSV
// dialect matches what spreadsheet apps expect from the product: UTF-8
// with BOM, a sep=, preamble, quoted text fields and bare numeric/enum
// fields.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

var (
	bom     = "\uFEFF"
	header  = "Title,Amount,Type,Category,Date"
	columns = "sep=,"
)

// WriteCSV serializes the filtered transaction list to w. Title and
// Category are double-quoted (embedded quotes doubled); Amount, Type and
// Date stay unquoted. Dates render as YYYY-MM-DD so the file round-trips
// identically on every machine.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(columns)
	b.WriteString("\n")
	b.WriteString(header)

	for _, tx := range txs {
		b.WriteString("\n")
		b.WriteString(quote(tx.Title))
		b.WriteString(",")
		b.WriteString(tx.Amount.String())
		b.WriteString(",")
		b.WriteString(string(tx.Type))
		b.WriteString(",")
		b.WriteString(quote(string(tx.Category)))
		b.WriteString(",")
		if !tx.Date.IsZero() {
			b.WriteString(tx.Date.UTC().Format(core.DateLayout))
		}
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename is the suggested download name.
const Filename = "transactions.csv"
