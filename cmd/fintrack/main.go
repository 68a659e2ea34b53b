package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/jrsteele09/fintrack-client/cmd/fintrack/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool   `help:"Enable debug logging."`
		Config  string `help:"Config file path." type:"path"`
		APIURL  string `name:"api-url" help:"API base URL."`
		DataDir string `help:"Folder for stored credentials."`
		Storage string `help:"Credential storage: file, valkey or memory."`
		Version kong.VersionFlag

		Login        commands.LoginCmd        `cmd:"" help:"Sign in with email and password"`
		LoginGoogle  commands.LoginGoogleCmd  `cmd:"" name:"login-google" help:"Sign in with Google"`
		Register     commands.RegisterCmd     `cmd:"" help:"Create an account"`
		Logout       commands.LogoutCmd       `cmd:"" help:"Sign out and forget stored tokens"`
		Status       commands.StatusCmd       `cmd:"" help:"Show the signed in user"`
		Profile      commands.ProfileCmd      `cmd:"" help:"Manage the account"`
		Dashboard    commands.DashboardCmd    `cmd:"" help:"Show the dashboard"`
		Transactions commands.TransactionsCmd `cmd:"" aliases:"tx" help:"Manage transactions"`
		Categories   commands.CategoriesCmd   `cmd:"" help:"Manage categories"`
		Cards        commands.CardsCmd        `cmd:"" help:"Manage cards"`
		About        commands.VersionCmd      `cmd:"" name:"version" help:"Print the version"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("fintrack"),
		kong.Description("FinTrack personal finance client"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		ConfigFile: cli.Config,
		APIURL:     cli.APIURL,
		DataDir:    cli.DataDir,
		Storage:    cli.Storage,
	})
	cmd.FatalIfErrorf(err)
}
