package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/fintrack-client/cards"
)

type CardsCmd struct {
	List   CardsListCmd   `cmd:"" default:"1" help:"List cards with masked numbers"`
	Add    CardsAddCmd    `cmd:"" help:"Add a card"`
	Update CardsUpdateCmd `cmd:"" help:"Change a card"`
	Delete CardsDeleteCmd `cmd:"" help:"Delete a card"`
}

type CardsListCmd struct{}

func (c *CardsListCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		list, err := a.api.ListCards(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No cards found.")
			return nil
		}
		w := newTable(a.out)
		fmt.Fprintln(w, "BANK\tTYPE\tNUMBER\tEXPIRY\tBALANCE\tSTATUS\tID")
		for _, card := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				card.Bank, card.Type, card.Masked(), card.Expiry, money(card.Balance), card.Status, card.ID)
		}
		w.Flush()
		return nil
	})
}

type CardsAddCmd struct {
	Type    string  `arg:"" help:"VISA, MASTERCARD, MAESTRO or RUPAY"`
	Holder  string  `help:"Name on the card" required:""`
	Number  string  `help:"Card number, 16 digits" required:""`
	Expiry  string  `help:"Expiry as MM/YY" required:""`
	Balance float64 `help:"Current balance" default:"0"`
	Bank    string  `help:"Issuing bank" required:""`
}

func (c *CardsAddCmd) Run(ctx context.Context, globals *Globals) error {
	typ, _ := cards.ParseType(c.Type)
	p := cards.NewPayload(typ, c.Holder, c.Number, c.Expiry, c.Balance, c.Bank)
	if err := p.Validate(time.Now()); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		card, err := a.api.CreateCard(ctx, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Added %s %s %s (%s)\n", card.Bank, card.Type, card.Masked(), card.ID)
		return nil
	})
}

type CardsUpdateCmd struct {
	ID      string   `arg:"" help:"Card id"`
	Type    string   `help:"VISA, MASTERCARD, MAESTRO or RUPAY"`
	Holder  string   `help:"Name on the card"`
	Number  string   `help:"Card number"`
	Expiry  string   `help:"Expiry as MM/YY"`
	Balance *float64 `help:"Current balance"`
	Bank    string   `help:"Issuing bank"`
	Status  string   `help:"Active or Inactive"`
}

func (c *CardsUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	p := cards.UpdatePayload{
		Holder:  c.Holder,
		Number:  c.Number,
		Expiry:  c.Expiry,
		Balance: c.Balance,
		Bank:    c.Bank,
		Status:  c.Status,
	}
	if c.Type != "" {
		p.Type, _ = cards.ParseType(c.Type)
	}
	if err := p.Validate(time.Now()); err != nil {
		return err
	}

	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		card, err := a.api.UpdateCard(ctx, c.ID, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated %s %s %s (%s)\n", card.Bank, card.Type, card.Masked(), card.Status)
		return nil
	})
}

type CardsDeleteCmd struct {
	ID string `arg:"" help:"Card id"`
}

func (c *CardsDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if err := a.api.DeleteCard(ctx, c.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted card %s\n", c.ID)
		return nil
	})
}
