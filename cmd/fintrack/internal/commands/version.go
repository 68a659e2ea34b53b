package commands

import (
	"context"
	"fmt"

	"github.com/common-nighthawk/go-figure"
)

// VersionCmd prints the banner and build version
type VersionCmd struct {
	Plain bool `help:"Skip the banner"`
}

func (c *VersionCmd) Run(_ context.Context, globals *Globals) error {
	out := globals.stdout()
	if !c.Plain {
		fmt.Fprintln(out, figure.NewFigure("FinTrack", "cybermedium", true).String())
	}
	fmt.Fprintf(out, "fintrack %s\n", globals.Version)
	return nil
}
