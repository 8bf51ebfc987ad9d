package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"solarcheck/internal/core"
	"solarcheck/internal/session"
	"solarcheck/internal/types"
)

// SessionService is the guided check flow. Implemented by *session.Service.
type SessionService interface {
	Start(ctx context.Context) session.Session
	Get(ctx context.Context, id string) (session.Session, error)
	ResolveLocation(ctx context.Context, id, ip string) (session.Session, error)
	FetchData(ctx context.Context, id string) (session.Session, error)
	Evaluate(ctx context.Context, id string) (session.Session, error)
	SelectPanels(ctx context.Context, id string, n int) (session.Session, error)
	End(ctx context.Context, id string) (session.Session, error)
	Restart(ctx context.Context, id string) (session.Session, error)
}

// LocationRequest is the optional body of POST /v1/sessions/{id}/location.
type LocationRequest struct {
	IP string `json:"ip,omitempty" validate:"omitempty,public_ip"`
}

// PanelsRequest is the body of PUT /v1/sessions/{id}/panels.
type PanelsRequest struct {
	PanelCount int `json:"panel_count" validate:"required,panel_count"`
}

// SessionHandler exposes the session flow over HTTP. Each step is a POST
// that fires one trigger; out-of-order steps return 409.
type SessionHandler struct {
	svc       SessionService
	validator *core.Validator
	logger    *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc SessionService, v *core.Validator, l *slog.Logger) *SessionHandler {
	if l == nil {
		l = slog.Default()
	}
	return &SessionHandler{svc: svc, validator: v, logger: l}
}

// RegisterRoutes mounts the session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/location", h.ResolveLocation)
			r.Post("/data", h.FetchData)
			r.Post("/evaluation", h.Evaluate)
			r.Put("/panels", h.SelectPanels)
			r.Post("/end", h.End)
			r.Post("/restart", h.Restart)
		})
	})
}

// Create handles POST /v1/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	core.Data(w, r, http.StatusCreated, h.svc.Start(r.Context()))
}

// Get handles GET /v1/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, sess, err)
}

// ResolveLocation handles POST /v1/sessions/{id}/location. Without an ip
// in the body the caller's own address is located. A non-public caller
// address (local development) falls back to the locator's self lookup.
func (h *SessionHandler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := core.DecodeOptionalJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	ip := req.IP
	if ip == "" {
		ip = publicClientIP(r.Context())
	}

	sess, err := h.svc.ResolveLocation(r.Context(), chi.URLParam(r, "id"), ip)
	h.respond(w, r, http.StatusOK, sess, err)
}

// FetchData handles POST /v1/sessions/{id}/data.
func (h *SessionHandler) FetchData(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.FetchData(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, sess, err)
}

// Evaluate handles POST /v1/sessions/{id}/evaluation.
func (h *SessionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Evaluate(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, sess, err)
}

// SelectPanels handles PUT /v1/sessions/{id}/panels.
func (h *SessionHandler) SelectPanels(w http.ResponseWriter, r *http.Request) {
	var req PanelsRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	sess, err := h.svc.SelectPanels(r.Context(), chi.URLParam(r, "id"), req.PanelCount)
	h.respond(w, r, http.StatusOK, sess, err)
}

// End handles POST /v1/sessions/{id}/end.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.End(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, sess, err)
}

// Restart handles POST /v1/sessions/{id}/restart. The response is the new
// session, with a new ID.
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Restart(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusCreated, sess, err)
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, status int, sess session.Session, err error) {
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, status, sess)
}

// publicClientIP returns the request's client IP when it is publicly
// routable, and "" otherwise so the locator falls back to its own view of
// the caller.
func publicClientIP(ctx context.Context) string {
	raw := types.GetClientIP(ctx)
	if raw == "" {
		return ""
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil || !core.IsPublicIP(addr) {
		return ""
	}
	return raw
}
