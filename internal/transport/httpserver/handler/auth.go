package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	auditdomain "reserva-go/internal/domain/audit"
	staffdomain "reserva-go/internal/domain/staff"
	"reserva-go/internal/transport/httpserver/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string              `json:"token"`
	Member *staffdomain.Member `json:"member"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	token, member, err := h.Staff.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, staffdomain.ErrInvalidCredentials) {
			h.log.BusinessError("auth.login: invalid credentials", err, "email", req.Email)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		h.log.InternalError("auth.login: login failed", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.Audit.Record(r.Context(), member.ID, member.Email, auditdomain.ActionLogin, "staff_member", member.ID, "", r.RemoteAddr)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, Member: member})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	member, err := h.Staff.Get(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, staffdomain.ErrMemberNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		h.log.InternalError("auth.me: load member failed", err, "member_id", actor.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

type registerStaffRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     staffdomain.Role `json:"role"`
}

func (h *Handlers) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	var req registerStaffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	member, err := h.Staff.Register(r.Context(), staffdomain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, staffdomain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		case errors.Is(err, staffdomain.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
		case errors.Is(err, staffdomain.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "invalid_role", "role must be ADMIN or STAFF")
		case errors.Is(err, staffdomain.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, "invalid_request", "email is required")
		default:
			h.log.InternalError("staff.register: create failed", err, "email", req.Email)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionCreate, "staff_member", member.ID, member.Email)
	writeJSON(w, http.StatusCreated, member)
}

func (h *Handlers) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.Staff.List(r.Context())
	if err != nil {
		h.log.InternalError("staff.list: query failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

type setRoleRequest struct {
	Role staffdomain.Role `json:"role"`
}

func (h *Handlers) SetStaffRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	member, err := h.Staff.SetRole(r.Context(), id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, staffdomain.ErrMemberNotFound):
			writeError(w, http.StatusNotFound, "member_not_found", "staff member not found")
		case errors.Is(err, staffdomain.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "invalid_role", "role must be ADMIN or STAFF")
		default:
			h.log.InternalError("staff.set_role: update failed", err, "member_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionSetRole, "staff_member", member.ID, string(req.Role))
	writeJSON(w, http.StatusOK, member)
}

// recordAudit attributes the action to the request's actor when one exists.
func (h *Handlers) recordAudit(r *http.Request, action, entity, entityID, detail string) {
	actor, _ := middleware.ActorFromContext(r.Context())
	actorEmail := ""
	if actor.ID != "" {
		if m, err := h.Staff.Get(r.Context(), actor.ID); err == nil {
			actorEmail = m.Email
		}
	}
	h.Audit.Record(r.Context(), actor.ID, actorEmail, action, entity, entityID, detail, r.RemoteAddr)
}
