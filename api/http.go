// Package api exposes the command interpretation pipeline and the usage
// ledger over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plotdeck/plotdeck/dashboard"
	"github.com/plotdeck/plotdeck/dataset"
	"github.com/plotdeck/plotdeck/interpreter"
	"github.com/plotdeck/plotdeck/usage"
)

// CommandInterpreter runs one natural-language request against a
// dashboard snapshot. The production implementation is
// *interpreter.Interpreter; tests substitute fakes.
type CommandInterpreter interface {
	Interpret(ctx context.Context, req interpreter.Request) (*interpreter.Outcome, error)
}

// Dependencies carries everything the HTTP handler needs.
type Dependencies struct {
	Logger      *slog.Logger
	Interpreter CommandInterpreter
	Ledger      *usage.Ledger
	RecentLimit int
}

// CommandRequest is the POST /api/command body.
type CommandRequest struct {
	Prompt string `json:"prompt"`

	// CurrentDashboard is the dashboard snapshot the command applies to.
	CurrentDashboard *dashboard.Document `json:"currentDashboard"`

	// Dashboard is accepted as an alias for CurrentDashboard.
	Dashboard *dashboard.Document `json:"dashboard,omitempty"`

	Schema *dataset.Schema `json:"schema,omitempty"`
}

// document returns the snapshot from whichever key the caller used.
func (r *CommandRequest) document() *dashboard.Document {
	if r.CurrentDashboard != nil {
		return r.CurrentDashboard
	}
	return r.Dashboard
}

// CommandResponse is the POST /api/command reply. Rejections and target
// misses are successes at the transport level: the pipeline recognized
// it could not satisfy the request and said so.
type CommandResponse struct {
	Applied      bool                `json:"applied"`
	Action       string              `json:"action,omitempty"`
	RejectReason string              `json:"rejectReason,omitempty"`
	Message      string              `json:"message"`
	Dashboard    *dashboard.Document `json:"dashboard"`
}

// UsageResponse is the GET /api/usage reply.
type UsageResponse struct {
	Stats          usage.Stats      `json:"stats"`
	Cache          usage.CacheStats `json:"cache"`
	RecentRequests []usage.Record   `json:"recentRequests"`
}

// NewHandler builds the HTTP routing table.
func NewHandler(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recentLimit := deps.RecentLimit
	if recentLimit <= 0 {
		recentLimit = 10
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "plotdeck"})
	})

	metricsHandler := promhttp.Handler()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		metricsHandler.ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		if req.Prompt == "" {
			writeError(w, http.StatusBadRequest, "prompt is required", "")
			return
		}
		doc := req.document()
		if doc == nil {
			writeError(w, http.StatusBadRequest, "currentDashboard is required", "")
			return
		}

		outcome, err := deps.Interpreter.Interpret(r.Context(), interpreter.Request{
			Prompt:   req.Prompt,
			Document: doc,
			Schema:   req.Schema,
		})
		if err != nil {
			switch {
			case interpreter.IsConfigurationMissing(err):
				logger.Error("Command failed: configuration missing", "error", err)
				writeError(w, http.StatusInternalServerError, "model gateway configuration missing", err.Error())
			case interpreter.IsUpstreamUnavailable(err):
				logger.Error("Command failed: model unavailable", "error", err)
				writeError(w, http.StatusBadGateway, "model service unavailable", err.Error())
			default:
				logger.Error("Command failed", "error", err)
				writeError(w, http.StatusInternalServerError, "command failed", err.Error())
			}
			return
		}

		resp := CommandResponse{
			Applied:   outcome.Applied,
			Message:   outcome.Message,
			Dashboard: outcome.Document,
		}
		if outcome.Command != nil {
			resp.Action = string(outcome.Command.Action())
		}
		outcomeLabel := "applied"
		if !outcome.Applied {
			resp.RejectReason = string(outcome.RejectReason)
			outcomeLabel = "rejected"
		}
		actionLabel := resp.Action
		if actionLabel == "" {
			actionLabel = "none"
		}
		commandsTotal.WithLabelValues(actionLabel, outcomeLabel).Inc()

		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("/api/usage", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			if deps.Ledger == nil {
				writeError(w, http.StatusServiceUnavailable, "usage tracking is not enabled", "")
				return
			}
			writeJSON(w, http.StatusOK, UsageResponse{
				Stats:          deps.Ledger.Stats(),
				Cache:          deps.Ledger.CacheStats(),
				RecentRequests: deps.Ledger.Recent(recentLimit),
			})
		case http.MethodDelete:
			if deps.Ledger == nil {
				writeError(w, http.StatusServiceUnavailable, "usage tracking is not enabled", "")
				return
			}
			target := r.URL.Query().Get("target")
			if target == "" {
				target = usage.ClearAll
			}
			if err := deps.Ledger.Clear(target); err != nil {
				writeError(w, http.StatusBadRequest, "invalid clear target", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"cleared": target})
		default:
			w.Header().Set("Allow", "GET, DELETE")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	return instrument(mux)
}

// NewServer wraps the handler in an http.Server with sane timeouts.
func NewServer(listen string, deps Dependencies) *http.Server {
	return &http.Server{
		Addr:              listen,
		Handler:           NewHandler(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// instrument records request counts and latency per route.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.status)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDurationSeconds.WithLabelValues(r.Method, r.URL.Path, status).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the failure payload: a short user-facing error plus
// an operator-facing details string when there is technical detail to
// carry.
func writeError(w http.ResponseWriter, status int, msg, details string) {
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}
