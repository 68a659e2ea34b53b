package commands

import (
	"context"
	"fmt"

	"github.com/jrsteele09/fintrack-client/categories"
	"github.com/jrsteele09/fintrack-client/transactions"
)

type CategoriesCmd struct {
	List   CategoriesListCmd   `cmd:"" default:"withargs" help:"List categories"`
	Add    CategoriesAddCmd    `cmd:"" help:"Create a category"`
	Update CategoriesUpdateCmd `cmd:"" help:"Change a category"`
	Delete CategoriesDeleteCmd `cmd:"" help:"Delete a category"`
	Stats  CategoriesStatsCmd  `cmd:"" help:"Totals for one category"`
}

type CategoriesListCmd struct {
	Type string `help:"INCOME or EXPENSE"`
}

func (c *CategoriesListCmd) Run(ctx context.Context, globals *Globals) error {
	var typ categories.Type
	if c.Type != "" {
		var ok bool
		if typ, ok = categories.ParseType(c.Type); !ok {
			return fmt.Errorf("unknown category type %q, use INCOME or EXPENSE", c.Type)
		}
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		list, err := a.api.ListCategories(ctx, typ)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No categories found.")
			return nil
		}
		w := newTable(a.out)
		fmt.Fprintln(w, "NAME\tTYPE\tCOLOR\tID")
		for _, cat := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.Name, cat.Type, cat.Color, cat.ID)
		}
		w.Flush()
		return nil
	})
}

type CategoriesAddCmd struct {
	Name  string `arg:"" help:"Category name"`
	Type  string `arg:"" help:"INCOME or EXPENSE"`
	Color string `help:"Hex colour" default:"#6B7280"`
}

func (c *CategoriesAddCmd) Run(ctx context.Context, globals *Globals) error {
	typ, _ := categories.ParseType(c.Type)
	req := categories.CreateRequest{Name: c.Name, Type: typ, Color: c.Color}
	if req.Color == "" {
		req.Color = categories.DefaultColor
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		cat, err := a.api.CreateCategory(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created %s category %s (%s)\n", cat.Type, cat.Name, cat.ID)
		return nil
	})
}

type CategoriesUpdateCmd struct {
	ID    string `arg:"" help:"Category id"`
	Name  string `help:"New name"`
	Type  string `help:"INCOME or EXPENSE"`
	Color string `help:"Hex colour"`
}

func (c *CategoriesUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	req := categories.UpdateRequest{ID: c.ID, Name: c.Name, Color: c.Color}
	if c.Type != "" {
		req.Type, _ = categories.ParseType(c.Type)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		cat, err := a.api.UpdateCategory(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated %s category %s (%s)\n", cat.Type, cat.Name, cat.ID)
		return nil
	})
}

type CategoriesDeleteCmd struct {
	ID string `arg:"" help:"Category id"`
}

func (c *CategoriesDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if err := a.api.DeleteCategory(ctx, c.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted category %s\n", c.ID)
		return nil
	})
}

type CategoriesStatsCmd struct {
	ID   string `arg:"" help:"Category id"`
	From string `help:"Start date (YYYY-MM-DD)"`
	To   string `help:"End date (YYYY-MM-DD)"`
}

func (c *CategoriesStatsCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		s, err := a.api.CategoryStats(ctx, c.ID, transactions.Period{StartDate: c.From, EndDate: c.To})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Category: %s\n", s.CategoryName)
		fmt.Fprintf(a.out, "Count:    %d\n", s.TransactionCount)
		fmt.Fprintf(a.out, "Total:    %s\n", money(s.TotalAmount))
		return nil
	})
}
