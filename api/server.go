// Package api serves the show's HTTP control interface and the web client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/matt-g-everett/ledtiming/stream"
	"github.com/matt-g-everett/ledtiming/timing"
)

// Show is the part of stream.Show the API drives.
type Show interface {
	Execute(cmd stream.Command) (bool, error)
	Status() stream.Status
}

// Result is the body of a command response.
type Result struct {
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
	Status stream.Status `json:"status"`
}

type Api struct {
	show   Show
	static string
	logger *log.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewApi creates an API for show. Files under static are served from /;
// an empty static disables that.
func NewApi(show Show, static string, logger *log.Logger) *Api {
	a := new(Api)
	a.show = show
	a.static = static
	a.logger = logger
	if a.logger == nil {
		a.logger = log.Default()
	}
	return a
}

// Handler returns the API routes.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", a.handleStatus)
	mux.HandleFunc("POST /api/{command}", a.handleCommand)
	if a.static != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(a.static)))
	}
	return mux
}

// Serve listens on addr until Shutdown is called.
func (a *Api) Serve(addr string) error {
	server := &http.Server{Addr: addr, Handler: a.Handler()}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.logger.Printf("[api] listening on %s", addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops a server started by Serve.
func (a *Api) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (a *Api) handleStatus(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.show.Status())
}

func (a *Api) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := stream.ParseCommand(r.PathValue("command"))
	if err != nil {
		a.writeJSON(w, http.StatusNotFound, Result{Error: err.Error(), Status: a.show.Status()})
		return
	}

	ok, err := a.show.Execute(cmd)
	res := Result{OK: ok, Status: a.show.Status()}
	code := http.StatusOK
	if err != nil {
		res.Error = err.Error()
		code = http.StatusInternalServerError
		if errors.Is(err, timing.ErrInvalidState) {
			code = http.StatusConflict
		}
	}
	a.logger.Printf("[api] %s ok=%t", cmd, ok)
	a.writeJSON(w, code, res)
}

func (a *Api) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Printf("[api] write response: %v", err)
	}
}
