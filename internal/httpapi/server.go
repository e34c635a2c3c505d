// Package httpapi exposes a fixture over HTTP.
//
//	GET  /health                   ping every connection
//	GET  /databases                list registered databases
//	POST /databases/{name}/execute run {"sql": "..."} on one database
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hlop3z/sqlfixture/pkg/sqlfixture"
)

// maxBodyBytes bounds the size of an execute request body.
const maxBodyBytes = 1 << 20

// Fixture is what the API needs from *sqlfixture.Fixture.
type Fixture interface {
	Connections() []sqlfixture.ConnectionInfo
	Execute(ctx context.Context, name, sql string) (sqlfixture.Result, error)
	Ping(ctx context.Context) error
}

// ExecuteRequest is the body of POST /databases/{name}/execute.
type ExecuteRequest struct {
	SQL string `json:"sql"`
}

// ExecuteResponse carries a normalized result. Value is null for kind "none".
type ExecuteResponse struct {
	Kind  string  `json:"kind"`
	Value *string `json:"value"`
}

// DatabasesResponse lists registered databases in registration order.
type DatabasesResponse struct {
	Databases   []string           `json:"databases"`
	Connections []ConnectionDetail `json:"connections"`
}

// ConnectionDetail describes one registered database.
type ConnectionDetail struct {
	Name        string    `json:"name"`
	Driver      string    `json:"driver"`
	URL         string    `json:"url"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type handler struct {
	fixture Fixture
	logger  *slog.Logger
}

// NewHandler builds the router. A nil logger discards request logs.
func NewHandler(fx Fixture, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handler{fixture: fx, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.health)
	r.Route("/databases", func(r chi.Router) {
		r.Get("/", h.listDatabases)
		r.Post("/{name}/execute", h.execute)
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.fixture.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listDatabases(w http.ResponseWriter, _ *http.Request) {
	infos := h.fixture.Connections()
	resp := DatabasesResponse{
		Databases:   make([]string, 0, len(infos)),
		Connections: make([]ConnectionDetail, 0, len(infos)),
	}
	for _, info := range infos {
		resp.Databases = append(resp.Databases, info.Name)
		resp.Connections = append(resp.Connections, ConnectionDetail{
			Name:        info.Name,
			Driver:      info.Driver,
			URL:         info.URL,
			ConnectedAt: info.ConnectedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) execute(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ExecuteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("sql is required"))
		return
	}

	res, err := h.fixture.Execute(r.Context(), name, req.SQL)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	resp := ExecuteResponse{Kind: res.Kind.String()}
	if value, ok := res.Text(); ok {
		resp.Value = &value
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps fixture errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sqlfixture.ErrUnknownDatabase):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, sqlfixture.ErrExecutionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				slog.String("request_id", chimw.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("http server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
