package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"bridgehq/relay/pkg/providers"
	"bridgehq/relay/pkg/proxy/middleware"
)

// Models handles GET /api/models?provider=. Per-request credentials may be
// supplied via the X-API-Key and X-Base-URL headers; otherwise the
// configured defaults apply.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	providerType := r.URL.Query().Get("provider")
	if providerType == "" {
		writeError(w, http.StatusBadRequest, "provider query parameter is required")
		return
	}

	provider, err := h.newProvider(providerType, providers.Credentials{
		APIKey:  r.Header.Get("X-API-Key"),
		BaseURL: r.Header.Get("X-Base-URL"),
	})
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	start := time.Now()
	models, err := provider.FetchModels(r.Context())
	h.metrics.ObserveRequest(providerType, "models", time.Since(start).Seconds(), err)
	if err != nil {
		slog.Error("model listing failed",
			"provider", providerType,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ModelsResponse{Models: models})
}
