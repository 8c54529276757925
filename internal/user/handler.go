package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-identity-go/internal/token"
)

// Handler exposes HTTP endpoints for the user flows.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.logger.Debugw("signup failed", "err", err)
		// every signup failure is a 400 on this route
		h.writeMessage(w, http.StatusBadRequest, MessageOf(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, "login failed", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Fetch(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, "fetch failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		h.writeError(w, "update profile failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req PasswordChangeRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.UpdatePassword(r.Context(), claims.UserID, req)
	if err != nil {
		h.writeError(w, "update password failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	resp, err := h.svc.Delete(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, "delete failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Unauthorized is the response for requests without a valid session token.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debugw("rejected token", "path", r.URL.Path, "err", err)
	h.writeMessage(w, http.StatusUnauthorized, MsgUnauthorized)
}

func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (*token.Claims, bool) {
	c, ok := token.ClaimsFromContext(r.Context())
	if !ok {
		h.writeMessage(w, http.StatusUnauthorized, MsgUnauthorized)
	}
	return c, ok
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Debugw("invalid payload", "path", r.URL.Path, "err", err)
		h.writeMessage(w, http.StatusBadRequest, MsgInvalidPayload)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(KindOf(err))
	if status >= http.StatusInternalServerError {
		h.logger.Warnw(msg, "err", err)
	} else {
		h.logger.Debugw(msg, "err", err)
	}
	h.writeMessage(w, status, MessageOf(err))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k Kind) int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, MessageResponse{Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
