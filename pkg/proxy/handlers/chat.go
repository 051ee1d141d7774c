package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"bridgehq/relay/pkg/config"
	"bridgehq/relay/pkg/providerfactory"
	"bridgehq/relay/pkg/providers"
	"bridgehq/relay/pkg/proxy/middleware"
	"bridgehq/relay/pkg/telemetry/metrics"
	"bridgehq/relay/pkg/usage"
)

// Handler serves the relay's API routes. Providers are constructed fresh
// per request from the current configuration, so config reloads apply
// immediately and no provider state crosses requests.
type Handler struct {
	cfg     *config.Store
	metrics *metrics.Metrics
	usage   *usage.Store // nil when usage accounting is disabled
}

// New creates the API handler. usageStore may be nil.
func New(cfg *config.Store, m *metrics.Metrics, usageStore *usage.Store) *Handler {
	return &Handler{cfg: cfg, metrics: m, usage: usageStore}
}

// Chat handles POST /api/chat in both bulk and streaming mode.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseChatRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.newProvider(req.Provider, providers.Credentials{
		APIKey:  req.APIKey,
		BaseURL: req.BaseURL,
	})
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	chatReq := &providers.ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Think:       req.Think,
		Stream:      req.Stream,
	}

	if req.Stream {
		h.streamChat(w, r, req, provider, chatReq)
		return
	}

	start := time.Now()
	content, err := provider.GenerateResponse(r.Context(), chatReq)
	h.observe(r, req, "bulk", time.Since(start), err)
	if err != nil {
		slog.Error("bulk chat request failed",
			"provider", req.Provider,
			"model", req.Model,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Content: content})
}

// streamChat drives a streaming provider call and relays increments as
// NDJSON lines. Errors before the first increment still produce a clean
// JSON error; once the stream has started the response status is already
// committed, so a failure just ends the stream after the sink's done line.
func (h *Handler) streamChat(w http.ResponseWriter, r *http.Request, req *ChatRequest, provider providers.Provider, chatReq *providers.ChatRequest) {
	sink := &ndjsonSink{
		w:        w,
		provider: req.Provider,
		metrics:  h.metrics,
	}

	start := time.Now()
	err := provider.StreamResponse(r.Context(), chatReq, sink)
	h.observe(r, req, "stream", time.Since(start), err)
	if err != nil {
		slog.Error("stream chat request failed",
			"provider", req.Provider,
			"model", req.Model,
			"request_id", middleware.GetRequestID(r.Context()),
			"started", sink.wrote,
			"error", err,
		)
		if !sink.wrote {
			writeError(w, errorStatus(err), err.Error())
		}
	}
}

// newProvider builds the per-request provider, resolving credential
// fallbacks from the current configuration.
func (h *Handler) newProvider(providerType string, creds providers.Credentials) (providers.Provider, error) {
	cfg := h.cfg.Current()
	return providerfactory.New(providerType, creds, providerfactory.Defaults{
		CloudAPIKey:       cfg.Providers.Cloud.APIKey,
		CloudBaseURL:      cfg.Providers.Cloud.BaseURL,
		SelfHostedBaseURL: cfg.Providers.SelfHosted.BaseURL,
		Timeout:           cfg.Providers.Timeout,
	})
}

// parseChatRequest decodes the wire request from a JSON body or a
// multipart form with an optional image attachment.
func (h *Handler) parseChatRequest(r *http.Request) (*ChatRequest, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var req ChatRequest
	if strings.HasPrefix(contentType, "multipart/") {
		maxUpload := h.cfg.Current().Server.MaxUploadBytes
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("request")), &req); err != nil {
			return nil, fmt.Errorf("invalid request part: %w", err)
		}
		if err := mergeImageUpload(r, &req); err != nil {
			return nil, err
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
	}

	if req.Provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	return &req, nil
}

// mergeImageUpload reads the optional "image" file part and splices it into
// the last user message as an image content part, converting that message's
// plain text into a text part alongside it.
func mergeImageUpload(r *http.Request, req *ChatRequest) error {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read image upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read image upload: %w", err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	part := providers.ContentPart{
		Type:     providers.PartTypeImage,
		Data:     base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}

	for i := len(req.Messages) - 1; i >= 0; i-- {
		msg := &req.Messages[i]
		if msg.Role != providers.RoleUser {
			continue
		}
		if !msg.Multimodal() && msg.Content != "" {
			msg.Parts = []providers.ContentPart{
				{Type: providers.PartTypeText, Text: msg.Content},
			}
			msg.Content = ""
		}
		msg.Parts = append(msg.Parts, part)
		return nil
	}

	// No user message to attach to; carry the image alone.
	req.Messages = append(req.Messages, providers.Message{
		Role:  providers.RoleUser,
		Parts: []providers.ContentPart{part},
	})
	return nil
}

// observe records metrics and, when enabled, a usage record.
func (h *Handler) observe(r *http.Request, req *ChatRequest, mode string, elapsed time.Duration, err error) {
	h.metrics.ObserveRequest(req.Provider, mode, elapsed.Seconds(), err)

	if h.usage == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	rec := usage.Record{
		RequestID: middleware.GetRequestID(r.Context()),
		Provider:  req.Provider,
		Model:     req.Model,
		Mode:      mode,
		Status:    status,
		Duration:  elapsed,
	}
	if err := h.usage.Insert(r.Context(), rec); err != nil {
		slog.Warn("failed to record usage", "error", err)
	}
}

// ndjsonSink relays stream increments to the HTTP response as NDJSON
// lines, flushing after each one. The done line is written from OnDone, so
// it appears exactly once on every termination path.
type ndjsonSink struct {
	w        http.ResponseWriter
	provider string
	metrics  *metrics.Metrics
	wrote    bool
}

func (s *ndjsonSink) writeLine(line StreamLine) {
	if !s.wrote {
		s.w.Header().Set("Content-Type", "application/x-ndjson")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.WriteHeader(http.StatusOK)
		s.wrote = true
	}
	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
}

// OnContent implements providers.Sink.
func (s *ndjsonSink) OnContent(text string) {
	s.metrics.ObserveIncrement(s.provider, "content")
	s.writeLine(StreamLine{Content: text})
}

// OnThinking implements providers.Sink.
func (s *ndjsonSink) OnThinking(text string) {
	s.metrics.ObserveIncrement(s.provider, "thinking")
	s.writeLine(StreamLine{Thinking: text})
}

// OnDone implements providers.Sink.
func (s *ndjsonSink) OnDone() {
	s.writeLine(StreamLine{Done: true})
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// errorStatus maps a provider-layer error to an HTTP status for the
// caller: configuration and validation problems are the caller's fault,
// anything that went wrong talking to the backend is a bad gateway.
func errorStatus(err error) int {
	var (
		configErr     *providers.ConfigError
		validationErr *providers.ValidationError
	)
	switch {
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
