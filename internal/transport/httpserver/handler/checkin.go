package handler

import (
	"errors"
	"net/http"
	"strings"

	auditdomain "reserva-go/internal/domain/audit"
	reservationdomain "reserva-go/internal/domain/reservation"
)

type checkInRequest struct {
	QRToken string `json:"qr_token"`
	Code    string `json:"code"`
}

// CheckIn accepts either the QR token scanned at the door or the six
// character reservation code read aloud.
func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	var (
		res *reservationdomain.Reservation
		err error
	)
	switch {
	case strings.TrimSpace(req.QRToken) != "":
		res, err = h.Reservations.CheckInByToken(r.Context(), strings.TrimSpace(req.QRToken))
	case strings.TrimSpace(req.Code) != "":
		res, err = h.checkInByCode(r, req.Code)
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "qr_token or code is required")
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, reservationdomain.ErrReservationNotFound):
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
		case errors.Is(err, reservationdomain.ErrAlreadyCheckedIn):
			h.log.BusinessError("checkin: already checked in", err)
			writeError(w, http.StatusConflict, "already_checked_in", "reservation already checked in")
		case errors.Is(err, reservationdomain.ErrQRExpired):
			h.log.BusinessError("checkin: qr expired", err)
			writeError(w, http.StatusGone, "qr_expired", "qr token expired, ask staff to renew it")
		default:
			h.log.InternalError("checkin: update failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionCheckIn, "reservation", res.ID, "")
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) checkInByCode(r *http.Request, code string) (*reservationdomain.Reservation, error) {
	res, err := h.Reservations.GetByCode(r.Context(), code)
	if err != nil {
		return nil, err
	}
	return h.Reservations.CheckIn(r.Context(), res.ID)
}

// LookupByCode lets staff pull a reservation up from the spoken code.
func (h *Handlers) LookupByCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if strings.TrimSpace(code) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}
	res, err := h.Reservations.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, reservationdomain.ErrReservationNotFound) {
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
			return
		}
		h.log.InternalError("reservations.lookup: query failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AuditHistory exposes the trail for one entity.
func (h *Handlers) AuditHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseIntParam(q.Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be an integer")
		return
	}
	entries, err := h.Audit.History(r.Context(), q.Get("entity"), q.Get("entity_id"), limit)
	if err != nil {
		h.log.InternalError("audit.history: query failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
