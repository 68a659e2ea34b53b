package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/fintrack-client/transactions"
)

// Globals carries the top level flags into every command
type Globals struct {
	Debug      bool
	Version    string
	ConfigFile string
	APIURL     string
	DataDir    string
	Storage    string

	// Out and Err default to stdout and stderr
	Out io.Writer
	Err io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Globals) stderr() io.Writer {
	if g.Err == nil {
		return os.Stderr
	}
	return g.Err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func today() string {
	return time.Now().Format(transactions.DateLayout)
}
