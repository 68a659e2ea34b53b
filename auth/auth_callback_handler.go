package auth

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/fintrack-client/users"
)

// RouteCallback is where the provider redirect lands on the loopback listener
const RouteCallback = "/callback"

type CallbackResult struct {
	User *users.User
	Err  error
}

var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html><head><title>FinTrack</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em">
{{if .Err}}<h2>Sign-in failed</h2><p>{{.Err}}</p>{{else}}<h2>Signed in as {{.User.DisplayName}}</h2><p>You can close this window and return to the terminal.</p>{{end}}
</body></html>`))

// CallbackHandler completes the provider sign-in for the first redirect it
// receives and reports the outcome on Result.
type CallbackHandler struct {
	service *Service
	results chan CallbackResult
	once    sync.Once
}

func NewCallbackHandler(service *Service) *CallbackHandler {
	return &CallbackHandler{
		service: service,
		results: make(chan CallbackResult, 1),
	}
}

func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse form to support both GET (query params) and POST (form_post response mode)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid callback request", http.StatusBadRequest)
		return
	}

	handled := false
	h.once.Do(func() {
		handled = true
		user, err := h.service.CompleteOAuthCallback(r.Context(), r.Form)
		result := CallbackResult{User: user, Err: err}
		h.results <- result

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
		}
		_ = callbackPage.Execute(w, result)
	})

	if !handled {
		http.Error(w, "Sign-in already completed", http.StatusConflict)
	}
}

// ServeCallback serves h on ln until the first redirect completes or ctx ends
func ServeCallback(ctx context.Context, ln net.Listener, h *CallbackHandler) (*users.User, error) {
	mux := http.NewServeMux()
	mux.Handle(RouteCallback, h)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-h.Result():
		return res.User, res.Err
	case err := <-serveErr:
		return nil, fmt.Errorf("callback listener failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CallbackURL is the redirect target for a loopback listener on addr
func CallbackURL(addr net.Addr) string {
	return "http://" + addr.String() + RouteCallback
}
