package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/arin/codeaudit/internal/ai"
	"github.com/arin/codeaudit/internal/audit"
	"github.com/arin/codeaudit/internal/prompt"
	"github.com/arin/codeaudit/internal/stream"
)

const maxBodyBytes = 1 << 20

// Field names match the browser dashboard's existing contract.
type processRequest struct {
	Code        string `json:"code"`
	PackageType string `json:"packageType"`
}

type processResponse struct {
	Reply       string `json:"reply"`
	PackageType string `json:"packageType"`
	Timestamp   string `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type upstreamDetails struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Request outcomes, used as the metrics label.
const (
	outcomeCompleted     = "completed"
	outcomeDegraded      = "degraded"
	outcomeInterrupted   = "interrupted"
	outcomeClientClosed  = "client_closed"
	outcomeInvalid       = "invalid"
	outcomeUpstreamError = "upstream_error"
	outcomeInternalError = "internal_error"
)

func (s *Server) handleProcessCode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := s.logger(r)

	var req processRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		s.metrics.Requests.WithLabelValues(outcomeInvalid).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.PackageType == "" {
		req.PackageType = prompt.DefaultPackage
	}
	tier := prompt.ParseTier(req.PackageType)

	text, tokenLimit, err := prompt.Build(req.Code, tier)
	if err != nil {
		s.metrics.Requests.WithLabelValues(outcomeInvalid).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Code is required"})
		return
	}
	if !tier.Known() {
		log.Warn("unrecognized package type, using default prompt", zap.String("package_type", req.PackageType))
	}

	body, err := s.streamer.Stream(r.Context(), text, tokenLimit)
	if err != nil {
		log.Error("failed to open upstream stream", zap.Error(err))
		s.metrics.Requests.WithLabelValues(outcomeUpstreamError).Inc()
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to process code",
			Details: upstreamErrorDetails(err),
		})
		return
	}
	defer body.Close()

	res := s.aggregate(body, log)

	outcome := outcomeCompleted
	switch {
	case r.Context().Err() != nil:
		outcome = outcomeClientClosed
	case res.Interrupted:
		outcome = outcomeInterrupted
	case !res.Completed:
		outcome = outcomeDegraded
	}
	s.metrics.Requests.WithLabelValues(outcome).Inc()
	s.metrics.RequestLatency.WithLabelValues(tier.Label()).Observe(time.Since(start).Seconds())
	s.metrics.ReplyBytes.WithLabelValues(tier.Label()).Observe(float64(len(res.Text)))

	log.Info("audit finished",
		zap.String("package_type", req.PackageType),
		zap.String("outcome", outcome),
		zap.Int("reply_bytes", len(res.Text)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("duration", time.Since(start)),
	)

	if outcome == outcomeClientClosed {
		log.Info("client went away before the reply was written")
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Reply:       res.Text,
		PackageType: req.PackageType,
		Timestamp:   s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) aggregate(body io.Reader, log *zap.Logger) audit.Result {
	s.metrics.InFlight.Inc()
	defer s.metrics.InFlight.Dec()

	return audit.Aggregate(stream.NewParser(body), audit.WithWarningHook(func(wn audit.Warning) {
		s.metrics.MalformedLines.Inc()
		log.Warn("skipping malformed upstream line", zap.Int("line", wn.Line), zap.String("raw", truncate(wn.Raw, 200)))
	}))
}

// upstreamErrorDetails keeps the upstream payload opaque: a status and a
// short message, never the raw body beyond its first bytes.
func upstreamErrorDetails(err error) any {
	var se *ai.StatusError
	if errors.As(err, &se) {
		return upstreamDetails{Status: se.StatusCode, Message: se.Body}
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
