package dashboard

import (
	"sort"
	"strings"

	"github.com/jrsteele09/fintrack-client/categories"
	"github.com/jrsteele09/fintrack-client/transactions"
)

// RecentLimit is how many transactions the dashboard shows
const RecentLimit = 5

// Data is the GET /users/dashboard response body
type Data struct {
	TotalIncome        float64                    `json:"totalIncome"`
	TotalExpense       float64                    `json:"totalExpense"`
	Balance            float64                    `json:"balance"`
	RecentTransactions []transactions.Transaction `json:"recentTransactions"`
	CategoryBreakdown  []categories.Stats         `json:"categoryBreakdown"`
}

// Build aggregates a user's transactions. Transactions are matched to
// categories by name; unmatched names get a breakdown row without an id.
func Build(txs []transactions.Transaction, cats []categories.Category) Data {
	summary := transactions.Summarize(txs)
	data := Data{
		TotalIncome:  summary.TotalIncome,
		TotalExpense: summary.TotalExpense,
		Balance:      summary.Balance,
	}

	recent := append([]transactions.Transaction{}, txs...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	data.RecentTransactions = recent

	byName := make(map[string]*categories.Stats)
	order := make([]string, 0)
	for _, c := range cats {
		key := strings.ToLower(c.Name)
		if _, exists := byName[key]; exists {
			continue
		}
		byName[key] = &categories.Stats{CategoryID: c.ID, CategoryName: c.Name}
		order = append(order, key)
	}
	for _, t := range txs {
		key := strings.ToLower(t.Category)
		stats, ok := byName[key]
		if !ok {
			stats = &categories.Stats{CategoryName: t.Category}
			byName[key] = stats
			order = append(order, key)
		}
		stats.Add(t.Amount)
	}

	data.CategoryBreakdown = make([]categories.Stats, 0, len(order))
	for _, key := range order {
		if s := byName[key]; s.TransactionCount > 0 {
			data.CategoryBreakdown = append(data.CategoryBreakdown, *s)
		}
	}
	sort.SliceStable(data.CategoryBreakdown, func(i, j int) bool {
		return data.CategoryBreakdown[i].TotalAmount > data.CategoryBreakdown[j].TotalAmount
	})
	return data
}
