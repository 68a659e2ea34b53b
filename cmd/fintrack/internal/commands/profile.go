package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/fintrack-client/users"
)

type ProfileCmd struct {
	Show   ProfileShowCmd   `cmd:"" default:"1" help:"Show the signed in account"`
	Update ProfileUpdateCmd `cmd:"" help:"Change name or email"`
	Delete ProfileDeleteCmd `cmd:"" help:"Delete the account and all its data"`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		user, err := a.api.Profile(ctx)
		if err != nil {
			return err
		}
		printUser(a, user)
		return nil
	})
}

type ProfileUpdateCmd struct {
	Name  string `help:"New display name"`
	Email string `help:"New email address"`
}

func (c *ProfileUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	p := users.Profile{Name: strings.TrimSpace(c.Name), Email: strings.TrimSpace(c.Email)}
	if p.Name == "" && p.Email == "" {
		return errors.New("nothing to update, pass --name or --email")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		user, err := a.api.UpdateProfile(ctx, p)
		if err != nil {
			return err
		}
		if err := a.creds.CacheUser(ctx, user); err != nil {
			a.log.Warn().Err(err).Msg("failed to cache user")
		}
		a.session.SetUser(user)
		printUser(a, user)
		return nil
	})
}

type ProfileDeleteCmd struct {
	Yes bool `help:"Confirm the deletion" required:""`
}

func (c *ProfileDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	if !c.Yes {
		return errors.New("refusing to delete the account without --yes")
	}
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if err := a.api.DeleteAccount(ctx); err != nil {
			return err
		}
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Account deleted")
		return nil
	})
}

func printUser(a *app, user *users.User) {
	fmt.Fprintf(a.out, "ID:       %s\n", user.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", user.Name)
	fmt.Fprintf(a.out, "Email:    %s\n", user.Email)
	if user.GoogleID != "" {
		fmt.Fprintln(a.out, "Google:   linked")
	}
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Joined:   %s\n", user.CreatedAt.Format("2006-01-02"))
	}
}

// DashboardCmd prints totals, recent activity and the category breakdown
type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		data, err := a.api.Dashboard(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "Income:   %s\n", money(data.TotalIncome))
		fmt.Fprintf(a.out, "Expense:  %s\n", money(data.TotalExpense))
		fmt.Fprintf(a.out, "Balance:  %s\n", money(data.Balance))

		if len(data.RecentTransactions) > 0 {
			fmt.Fprintln(a.out, "\nRecent transactions")
			printTransactions(a.out, data.RecentTransactions)
		}
		if len(data.CategoryBreakdown) > 0 {
			fmt.Fprintln(a.out, "\nBy category")
			w := newTable(a.out)
			fmt.Fprintln(w, "CATEGORY\tCOUNT\tTOTAL")
			for _, s := range data.CategoryBreakdown {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.CategoryName, s.TransactionCount, money(s.TotalAmount))
			}
			w.Flush()
		}
		return nil
	})
}
