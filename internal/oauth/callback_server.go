package oauth

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"telescope/internal/metrics"
	"telescope/pkg/logging"
)

const (
	// DefaultCallbackHost is the loopback address the listener binds to.
	DefaultCallbackHost = "127.0.0.1"

	// DefaultCallbackPath is the route the SSO provider redirects to.
	DefaultCallbackPath = "/login"

	// DefaultCallbackTimeout is how long a login waits for the redirect.
	DefaultCallbackTimeout = 300 * time.Second

	// shutdownTimeout bounds the graceful part of Stop.
	shutdownTimeout = 5 * time.Second

	rejectedBody = "Missing code or state parameter.\n"
)

//go:embed templates/login_success.html
var loginSuccessHTML string

// ListenerState is the lifecycle position of a CallbackServer.
type ListenerState int

const (
	StateIdle ListenerState = iota
	StateListening
	StateDelivered
	StateTimedOut
	StateStopped
)

func (s ListenerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateDelivered:
		return "delivered"
	case StateTimedOut:
		return "timed_out"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CallbackConfig configures a CallbackServer.
type CallbackConfig struct {
	// Host to bind. Defaults to DefaultCallbackHost.
	Host string

	// Port to bind. 0 picks a free port.
	Port int

	// Path of the redirect route. Defaults to DefaultCallbackPath.
	Path string

	// Validate decides whether a redirect's query is deliverable. Defaults
	// to requiring non-empty code and state.
	Validate func(url.Values) bool

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func (c CallbackConfig) withDefaults() CallbackConfig {
	if c.Host == "" {
		c.Host = DefaultCallbackHost
	}
	if c.Path == "" {
		c.Path = DefaultCallbackPath
	}
	if c.Validate == nil {
		c.Validate = hasCodeAndState
	}
	if c.Logger == nil {
		c.Logger = logging.For("Callback")
	}
	return c
}

func hasCodeAndState(q url.Values) bool {
	return q.Get("code") != "" && q.Get("state") != ""
}

// CallbackServer is a single-use loopback HTTP listener that receives the
// SSO redirect and hands the first valid result to its DeliverySlot.
type CallbackServer struct {
	cfg  CallbackConfig
	slot *DeliverySlot

	mu        sync.Mutex
	state     ListenerState
	server    *http.Server
	listener  net.Listener
	serveDone chan struct{}
	serveErr  chan error
}

// NewCallbackServer creates an idle listener delivering into slot.
func NewCallbackServer(cfg CallbackConfig, slot *DeliverySlot) *CallbackServer {
	return &CallbackServer{
		cfg:      cfg.withDefaults(),
		slot:     slot,
		serveErr: make(chan error, 1),
	}
}

// Start binds the configured address and starts serving. A bind failure is
// returned as *BindError.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrListenerReused
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serveDone = make(chan struct{})
	s.state = StateListening

	go func(server *http.Server, done chan struct{}) {
		defer close(done)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.serveErr <- err:
			default:
			}
		}
	}(s.server, s.serveDone)

	s.cfg.Logger.Debug("Callback listener started", "addr", listener.Addr().String(), "path", s.cfg.Path)
	return nil
}

func (s *CallbackServer) routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(http.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	r.Get(s.cfg.Path, s.handleRedirect)
	return r
}

func (s *CallbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	query := r.URL.Query()
	if !s.cfg.Validate(query) {
		s.cfg.Logger.Warn("Rejected malformed SSO redirect",
			"has_code", query.Get("code") != "",
			"has_state", query.Get("state") != "")
		s.cfg.Metrics.CallbackRejected()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, rejectedBody)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, loginSuccessHTML)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	result := AuthorizationResult{Code: query.Get("code"), State: query.Get("state")}
	if !s.slot.Offer(result) {
		s.cfg.Logger.Debug("Ignored duplicate SSO redirect")
		s.cfg.Metrics.CallbackIgnored()
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
}

// Wait blocks until a result is delivered or ctx ends. A deadline expiry is
// reported as ErrTimeout; any other cancellation returns ctx.Err().
func (s *CallbackServer) Wait(ctx context.Context) (AuthorizationResult, error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != StateListening {
		return AuthorizationResult{}, ErrNotListening
	}

	select {
	case result := <-s.slot.C():
		s.transition(StateDelivered)
		return result, nil
	case err := <-s.serveErr:
		return AuthorizationResult{}, fmt.Errorf("callback listener failed: %w", err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.transition(StateTimedOut)
			return AuthorizationResult{}, ErrTimeout
		}
		return AuthorizationResult{}, ctx.Err()
	}
}

// transition moves a listening server to a terminal wait state.
func (s *CallbackServer) transition(to ListenerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateListening {
		s.state = to
	}
}

// Stop shuts the listener down and returns once the port is released and
// the serve goroutine has exited. It is safe to call more than once.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	if s.state == StateIdle || s.state == StateStopped {
		s.state = StateStopped
		s.mu.Unlock()
		return nil
	}
	server, listener, done := s.server, s.listener, s.serveDone
	s.state = StateStopped
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		// Connections that did not drain in time are dropped.
		err = server.Close()
	}
	_ = listener.Close()
	<-done

	s.cfg.Logger.Debug("Callback listener stopped")
	return err
}

// State returns the current lifecycle state.
func (s *CallbackServer) State() ListenerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound address, or nil before Start.
func (s *CallbackServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// RedirectURL returns the URL the listener serves the redirect route on.
func (s *CallbackServer) RedirectURL() string {
	addr := s.Addr()
	if addr == nil {
		return ""
	}
	return "http://" + addr.String() + s.cfg.Path
}
