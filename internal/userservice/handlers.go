package userservice

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/httpx"
	"github.com/dmitrijs2005/profilevault/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	accounts  Accounts
	forwarder *PDFForwarder
	validate  *validator.Validate
	log       logging.Logger
}

func NewHandler(a Accounts, f *PDFForwarder, log logging.Logger) *Handler {
	return &Handler{accounts: a, forwarder: f, validate: httpx.NewValidator(), log: log.With("module", "user_http")}
}

// Routes mounts the public API. Trailing slashes are accepted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "Backend is running"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/user/register", h.register)
		r.Post("/user/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(httpx.RequireBearer)
			r.Get("/pdf/profile", h.forward(http.MethodGet, profilePath))
			r.Post("/pdf/save", h.forward(http.MethodPost, savePath))
		})
	})
	return r
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ValidationDetail(err))
		return
	}

	if _, err := h.accounts.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			httpx.WriteError(w, http.StatusBadRequest, "Email already exist")
		case errors.Is(err, common.ErrorValidation):
			httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error(r.Context(), "register failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ValidationDetail(err))
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			httpx.WriteError(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) forward(method, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.forwarder.Forward(r.Context(), method, path, r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			h.log.Error(r.Context(), "pdf service call failed", "path", path, "error", err)
			httpx.WriteError(w, http.StatusBadGateway, "PDF service unavailable")
			return
		}
		defer resp.Body.Close()

		if err := relay(w, resp); err != nil {
			h.log.Warn(r.Context(), "relay interrupted", "path", path, "error", err)
		}
	}
}
