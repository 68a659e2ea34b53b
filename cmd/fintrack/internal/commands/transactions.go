package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jrsteele09/fintrack-client/internal/utils"
	"github.com/jrsteele09/fintrack-client/transactions"
)

type TransactionsCmd struct {
	List    TransactionsListCmd    `cmd:"" default:"withargs" help:"List transactions"`
	Add     TransactionsAddCmd     `cmd:"" help:"Record a transaction"`
	Update  TransactionsUpdateCmd  `cmd:"" help:"Change a transaction"`
	Delete  TransactionsDeleteCmd  `cmd:"" help:"Delete a transaction"`
	Summary TransactionsSummaryCmd `cmd:"" help:"Income, expense and balance for a period"`
}

type TransactionsListCmd struct {
	Page     int    `help:"Page number" default:"1"`
	Limit    int    `help:"Page size" default:"10"`
	Type     string `help:"CREDIT or DEBIT"`
	Category string `help:"Only this category"`
	From     string `help:"Start date (YYYY-MM-DD)"`
	To       string `help:"End date (YYYY-MM-DD)"`
}

func (c *TransactionsListCmd) Run(ctx context.Context, globals *Globals) error {
	params := transactions.ListParams{
		Page:     c.Page,
		Limit:    c.Limit,
		Category: c.Category,
		Period:   transactions.Period{StartDate: c.From, EndDate: c.To},
	}
	if c.Type != "" {
		typ, ok := transactions.ParseType(c.Type)
		if !ok {
			return fmt.Errorf("unknown transaction type %q, use CREDIT or DEBIT", c.Type)
		}
		params.Type = typ
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		page, err := a.api.ListTransactions(ctx, params)
		if err != nil {
			return err
		}
		if len(page.Transactions) == 0 {
			fmt.Fprintln(a.out, "No transactions found.")
			return nil
		}
		printTransactions(a.out, page.Transactions)
		p := page.Pagination
		fmt.Fprintf(a.out, "\nPage %d of %d (%d total)\n", p.Page, max(p.TotalPages, 1), p.Total)
		return nil
	})
}

type TransactionsAddCmd struct {
	Type        string  `arg:"" help:"CREDIT or DEBIT"`
	Amount      float64 `arg:"" help:"Amount"`
	Category    string  `arg:"" help:"Category name"`
	Description string  `help:"Free text note"`
	Date        string  `help:"Date (YYYY-MM-DD), defaults to today"`
}

func (c *TransactionsAddCmd) Run(ctx context.Context, globals *Globals) error {
	typ, _ := transactions.ParseType(c.Type)
	req := transactions.CreateRequest{
		Type:        typ,
		Amount:      c.Amount,
		Category:    c.Category,
		Description: c.Description,
		Date:        c.Date,
	}
	if req.Date == "" {
		req.Date = today()
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		t, err := a.api.CreateTransaction(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Recorded %s %s %s on %s (%s)\n", t.Type, money(t.Amount), t.Category, t.Date.Format(transactions.DateLayout), t.ID)
		return nil
	})
}

type TransactionsUpdateCmd struct {
	ID               string   `arg:"" help:"Transaction id"`
	Type             string   `help:"CREDIT or DEBIT"`
	Amount           *float64 `help:"Amount"`
	Category         string   `help:"Category name"`
	Description      *string  `help:"Free text note" xor:"description"`
	ClearDescription bool     `help:"Remove the note" xor:"description"`
	Date             string   `help:"Date (YYYY-MM-DD)"`
}

func (c *TransactionsUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	if c.ClearDescription {
		if c.Description != nil {
			return errors.New("pass --description or --clear-description, not both")
		}
		c.Description = utils.Ptr("")
	}
	req := transactions.UpdateRequest{
		ID:          c.ID,
		Amount:      c.Amount,
		Category:    c.Category,
		Description: c.Description,
		Date:        c.Date,
	}
	if c.Type != "" {
		req.Type, _ = transactions.ParseType(c.Type)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		t, err := a.api.UpdateTransaction(ctx, req)
		if err != nil {
			return err
		}
		printTransactions(a.out, []transactions.Transaction{*t})
		return nil
	})
}

type TransactionsDeleteCmd struct {
	ID string `arg:"" help:"Transaction id"`
}

func (c *TransactionsDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if err := a.api.DeleteTransaction(ctx, c.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted transaction %s\n", c.ID)
		return nil
	})
}

type TransactionsSummaryCmd struct {
	From string `help:"Start date (YYYY-MM-DD)"`
	To   string `help:"End date (YYYY-MM-DD)"`
}

func (c *TransactionsSummaryCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		s, err := a.api.TransactionSummary(ctx, transactions.Period{StartDate: c.From, EndDate: c.To})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Income:   %s\n", money(s.TotalIncome))
		fmt.Fprintf(a.out, "Expense:  %s\n", money(s.TotalExpense))
		fmt.Fprintf(a.out, "Balance:  %s\n", money(s.Balance))
		fmt.Fprintf(a.out, "Count:    %d\n", len(s.Transactions))
		return nil
	})
}

func printTransactions(out io.Writer, txs []transactions.Transaction) {
	w := newTable(out)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date.Format(transactions.DateLayout), t.Type, money(t.Signed()), t.Category, t.Description, t.ID)
	}
	w.Flush()
}
