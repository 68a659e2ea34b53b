package commands

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jrsteele09/fintrack-client/auth"
	"github.com/jrsteele09/fintrack-client/credentials"
)

// LoginCmd signs in with email and password
type LoginCmd struct {
	Email    string `arg:"" help:"Account email"`
	Password string `help:"Account password" env:"FINTRACK_PASSWORD" required:""`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		user, err := a.auth.Login(ctx, auth.LoginForm{Email: c.Email, Password: c.Password})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.DisplayName(), user.Email)
		return nil
	})
}

// RegisterCmd creates an account and signs in
type RegisterCmd struct {
	Name            string `help:"Display name" required:""`
	Email           string `arg:"" help:"Account email"`
	Password        string `help:"Account password" env:"FINTRACK_PASSWORD" required:""`
	ConfirmPassword string `help:"Repeat the password, defaults to --password"`
}

func (c *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	confirm := c.ConfirmPassword
	if confirm == "" {
		confirm = c.Password
	}
	return run(globals, func(a *app) error {
		user, err := a.auth.Register(ctx, auth.RegisterForm{
			Name:            c.Name,
			Email:           c.Email,
			Password:        c.Password,
			ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Account created, signed in as %s <%s>\n", user.DisplayName(), user.Email)
		return nil
	})
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out")
		return nil
	})
}

// StatusCmd shows who is signed in and when the access token expires
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		user, err := a.requireUser(ctx)
		if err != nil {
			if err == errNotLoggedIn {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}
			return err
		}

		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.DisplayName(), user.Email)
		fmt.Fprintf(a.out, "API:      %s\n", a.config.GetAPIURL())
		fmt.Fprintf(a.out, "Storage:  %s\n", a.config.GetStorageBackend())

		accessToken, err := a.creds.AccessToken(ctx)
		if err != nil {
			return err
		}
		if exp, ok := credentials.ExpiresAt(accessToken); ok {
			remaining := time.Until(exp).Round(time.Second)
			if remaining > 0 {
				fmt.Fprintf(a.out, "Token:    expires %s (in %s)\n", exp.Local().Format(time.RFC1123), remaining)
			} else {
				fmt.Fprintf(a.out, "Token:    expired %s, renewed on next call\n", exp.Local().Format(time.RFC1123))
			}
		}
		return nil
	})
}

// LoginGoogleCmd signs in through the provider redirect. The API sends the
// tokens to a listener on the loopback interface.
type LoginGoogleCmd struct {
	Port    int           `help:"Loopback port for the redirect, 0 uses the configured port" default:"0"`
	Timeout time.Duration `help:"How long to wait for the browser" default:"5m"`

	// Open hands the sign-in URL to the user. It prints the URL by default.
	Open func(url string) error `kong:"-"`
}

func (c *LoginGoogleCmd) Run(ctx context.Context, globals *Globals) error {
	return run(globals, func(a *app) error {
		port := c.Port
		if port == 0 {
			port = a.config.GetCallbackPort()
		}
		ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			return fmt.Errorf("failed to listen for the sign-in redirect: %w", err)
		}

		loginURL := a.auth.LoginURL(auth.CallbackURL(ln.Addr()))
		open := c.Open
		if open == nil {
			open = func(url string) error {
				fmt.Fprintf(a.out, "Open this URL in your browser to sign in:\n\n  %s\n\n", url)
				return nil
			}
		}
		if err := open(loginURL); err != nil {
			_ = ln.Close()
			return err
		}

		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		user, err := auth.ServeCallback(ctx, ln, auth.NewCallbackHandler(a.auth))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.DisplayName(), user.Email)
		return nil
	})
}
