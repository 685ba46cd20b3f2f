// Package api serves Pdf.Create over HTTP with CRM API3 style envelopes.
//
// Endpoints:
//   - POST /api/v3/Pdf/Create - create letters (JSON or form parameters)
//   - GET  /healthz           - liveness probe
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	letterpdf "github.com/alnah/go-letterpdf"
)

// Creator runs Pdf.Create. *letterpdf.Creator satisfies it.
type Creator interface {
	Create(ctx context.Context, p letterpdf.CreateParams) (*letterpdf.CreateResult, error)
}

var _ Creator = (*letterpdf.Creator)(nil)

// Handler holds the endpoint dependencies.
type Handler struct {
	creator Creator
	logger  *zap.Logger
}

// NewRouter returns a chi router with the API routes and middleware
// installed. Callers may mount further handlers on it.
func NewRouter(creator Creator, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{creator: creator, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Route("/api/v3/Pdf", func(r chi.Router) {
		r.Post("/Create", h.PdfCreate)
	})
	return r
}

// Health reports liveness.
//
// Method: GET
// Path: /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PdfCreate runs Pdf.Create.
//
// Method: POST
// Path: /api/v3/Pdf/Create
//
// Parameters (JSON body or form):
//   - contact_id: id or comma separated ids (required)
//   - template_id: message template id (required)
//   - to_email: recipient, required when output is email
//   - pdf_format_id: overrides the template's PDF format
//   - output: email (default), pdf, or html
func (h *Handler) PdfCreate(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeParams(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	params, err := raw.CreateParams()
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.creator.Create(r.Context(), params)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	values := NewValues(result)
	respondJSON(w, http.StatusOK, &Envelope{
		Version: apiVersion,
		Count:   len(result.Letters),
		Values:  &values,
	})
}
