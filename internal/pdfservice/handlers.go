// Package pdfservice renders profile documents from verified token claims
// and queues them for persistence.
package pdfservice

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/httpx"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/dmitrijs2005/profilevault/internal/pipeline"
	"github.com/dmitrijs2005/profilevault/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Renderer interface {
	Render(p render.Profile) ([]byte, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, subjectID, email string, artifact []byte) (*pipeline.Receipt, error)
}

type Handler struct {
	verifier httpx.TokenVerifier
	renderer Renderer
	producer Enqueuer
	log      logging.Logger
}

func NewHandler(v httpx.TokenVerifier, r Renderer, p Enqueuer, log logging.Logger) *Handler {
	return &Handler{verifier: v, renderer: r, producer: p, log: log.With("module", "pdf_http")}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "PDF Service is running"})
	})

	r.Route("/api/v1/pdf", func(r chi.Router) {
		r.Use(httpx.Authenticate(h.verifier, h.log))
		r.Get("/profile", h.profile)
		r.Post("/save", h.save)
	})
	return r
}

func (h *Handler) render(r *http.Request) ([]byte, string, string, error) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		return nil, "", "", common.ErrorUnauthorized
	}
	b, err := h.renderer.Render(render.Profile{
		Name:           id.Name,
		Surname:        id.Surname,
		Email:          id.Email,
		DateOfBirthday: id.DateOfBirthday,
	})
	return b, id.SubjectID, id.Email, err
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	b, _, _, err := h.render(r)
	if err != nil {
		h.log.Error(r.Context(), "render failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Could not render profile")
		return
	}

	w.Header().Set("Content-Type", common.PDFContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=profile.pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	b, subjectID, email, err := h.render(r)
	if err != nil {
		h.log.Error(r.Context(), "render failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Could not render profile")
		return
	}

	receipt, err := h.producer.Enqueue(r.Context(), subjectID, email, b)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrQueueUnavailable):
			w.Header().Set("Retry-After", "5")
			httpx.WriteError(w, http.StatusServiceUnavailable, "Queue unavailable, retry later")
		case errors.Is(err, common.ErrorValidation):
			httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error(r.Context(), "enqueue failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, receipt)
}
