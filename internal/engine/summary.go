package engine

import (
	"github.com/shopspring/decimal"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// CategoryTotal is an expense total for one category bucket.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Summary holds the dashboard scalars and the per-category expense
// breakdown for one owner's transaction set.
type Summary struct {
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpense      decimal.Decimal `json:"totalExpense"`
	Balance           decimal.Decimal `json:"balance"`
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory"`
}

// TotalIncome sums the amounts of all income entries.
func TotalIncome(txs []core.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Type == core.Income {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// TotalExpense sums the amounts of all expense entries.
func TotalExpense(txs []core.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Type == core.Expense {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// Balance is total income minus total expense.
func Balance(txs []core.Transaction) decimal.Decimal {
	return TotalIncome(txs).Sub(TotalExpense(txs))
}

// ExpenseByCategory sums expense amounts per category. A missing category
// is attributed to the "Other" bucket. Buckets appear in insertion order
// of first appearance, so the output is deterministic for a deterministic
// input order.
func ExpenseByCategory(txs []core.Transaction) []CategoryTotal {
	var totals []CategoryTotal
	index := make(map[string]int)

	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		name := string(tx.Category)
		if name == "" {
			name = string(core.CategoryOther)
		}
		i, ok := index[name]
		if !ok {
			i = len(totals)
			index[name] = i
			totals = append(totals, CategoryTotal{Category: name, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(tx.Amount)
	}
	return totals
}

// Summarize computes every summary in one pass-equivalent call. It is a
// pure function: the input slice is left untouched.
func Summarize(txs []core.Transaction) Summary {
	income := TotalIncome(txs)
	expense := TotalExpense(txs)
	return Summary{
		TotalIncome:       income,
		TotalExpense:      expense,
		Balance:           income.Sub(expense),
		ExpenseByCategory: ExpenseByCategory(txs),
	}
}
