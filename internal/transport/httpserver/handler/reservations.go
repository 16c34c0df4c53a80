package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	auditdomain "reserva-go/internal/domain/audit"
	reservationdomain "reserva-go/internal/domain/reservation"
	unitdomain "reserva-go/internal/domain/unit"
)

type createReservationRequest struct {
	FullName        string `json:"full_name"`
	People          int    `json:"people"`
	Kids            int    `json:"kids"`
	ReservationDate string `json:"reservation_date"`
	UnitID          string `json:"unit_id"`
	Unit            string `json:"unit"`
	AreaID          string `json:"area_id"`
	Area            string `json:"area"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	UTMSource       string `json:"utm_source"`
	UTMMedium       string `json:"utm_medium"`
	UTMCampaign     string `json:"utm_campaign"`
	UTMContent      string `json:"utm_content"`
	UTMTerm         string `json:"utm_term"`
}

type updateReservationRequest struct {
	FullName        *string `json:"full_name"`
	People          *int    `json:"people"`
	Kids            *int    `json:"kids"`
	ReservationDate *string `json:"reservation_date"`
	UnitID          *string `json:"unit_id"`
	Unit            *string `json:"unit"`
	AreaID          *string `json:"area_id"`
	Area            *string `json:"area"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
}

// CreateReservation is the public booking endpoint.
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	date, err := parseTimestamp(req.ReservationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "reservation_date is missing or malformed")
		return
	}

	res, err := h.Reservations.Create(r.Context(), reservationdomain.CreateInput{
		FullName:        req.FullName,
		People:          req.People,
		Kids:            req.Kids,
		ReservationDate: date,
		UnitID:          req.UnitID,
		UnitName:        req.Unit,
		AreaID:          req.AreaID,
		AreaName:        req.Area,
		Email:           req.Email,
		Phone:           req.Phone,
		UTMSource:       req.UTMSource,
		UTMMedium:       req.UTMMedium,
		UTMCampaign:     req.UTMCampaign,
		UTMContent:      req.UTMContent,
		UTMTerm:         req.UTMTerm,
	})
	if err != nil {
		h.writeReservationError(w, "reservations.create", err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDateParam(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
		return
	}
	limit, err := parseIntParam(q.Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be an integer")
		return
	}
	offset, err := parseIntParam(q.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "offset must be an integer")
		return
	}

	filter := reservationdomain.ListFilter{
		UnitID: q.Get("unit_id"),
		AreaID: q.Get("area_id"),
		From:   from,
		To:     to,
		Status: reservationdomain.Status(q.Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	if filter.Status != "" && !reservationdomain.ValidStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown reservation status")
		return
	}

	items, total, err := h.Reservations.List(r.Context(), filter)
	if err != nil {
		h.log.InternalError("reservations.list: query failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": items, "total": total})
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.Reservations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, reservationdomain.ErrReservationNotFound) {
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
			return
		}
		h.log.InternalError("reservations.get: query failed", err, "reservation_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	input := reservationdomain.UpdateInput{
		FullName: req.FullName,
		People:   req.People,
		Kids:     req.Kids,
		UnitID:   req.UnitID,
		UnitName: req.Unit,
		AreaID:   req.AreaID,
		AreaName: req.Area,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if req.ReservationDate != nil {
		date, err := parseTimestamp(*req.ReservationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "reservation_date is malformed")
			return
		}
		input.ReservationDate = &date
	}

	res, err := h.Reservations.Update(r.Context(), id, input)
	if err != nil {
		h.writeReservationError(w, "reservations.update", err)
		return
	}

	h.recordAudit(r, auditdomain.ActionUpdate, "reservation", res.ID, "")
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Reservations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, reservationdomain.ErrReservationNotFound) {
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
			return
		}
		h.log.InternalError("reservations.delete: delete failed", err, "reservation_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordAudit(r, auditdomain.ActionDelete, "reservation", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.Reservations.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, reservationdomain.ErrReservationNotFound) {
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
			return
		}
		h.log.InternalError("reservations.cancel: update failed", err, "reservation_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordAudit(r, auditdomain.ActionStatus, "reservation", res.ID, string(res.Status))
	writeJSON(w, http.StatusOK, res)
}

type setStatusRequest struct {
	Status reservationdomain.Status `json:"status"`
}

func (h *Handlers) SetReservationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req setStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	res, err := h.Reservations.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, reservationdomain.ErrReservationNotFound):
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
		case errors.Is(err, reservationdomain.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status", "unknown reservation status")
		default:
			h.log.InternalError("reservations.set_status: update failed", err, "reservation_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionStatus, "reservation", res.ID, string(req.Status))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) RenewReservationQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.Reservations.RenewQR(r.Context(), id)
	if err != nil {
		if errors.Is(err, reservationdomain.ErrReservationNotFound) {
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
			return
		}
		h.log.InternalError("reservations.renew_qr: renew failed", err, "reservation_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordAudit(r, auditdomain.ActionQRRenew, "reservation", res.ID, "")
	writeJSON(w, http.StatusOK, map[string]any{
		"reservation_id": res.ID,
		"qr_token":       res.QRToken,
		"qr_expires_at":  res.QRExpiresAt,
	})
}

type addGuestRequest struct {
	Name  string                      `json:"name"`
	Email string                      `json:"email"`
	Role  reservationdomain.GuestRole `json:"role"`
}

func (h *Handlers) AddReservationGuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req addGuestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	g, err := h.Reservations.AddGuest(r.Context(), id, req.Name, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, reservationdomain.ErrReservationNotFound):
			writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
		case errors.Is(err, reservationdomain.ErrGuestEmailTaken):
			writeError(w, http.StatusConflict, "guest_email_taken", "guest email already registered for this reservation")
		default:
			h.log.InternalError("reservations.add_guest: create failed", err, "reservation_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handlers) ListReservationGuests(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	guests, err := h.Reservations.ListGuests(r.Context(), id)
	if err != nil {
		h.log.InternalError("reservations.list_guests: query failed", err, "reservation_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guests": guests})
}

func (h *Handlers) RemoveReservationGuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	guestID := chi.URLParam(r, "guest_id")
	if err := h.Reservations.RemoveGuest(r.Context(), id, guestID); err != nil {
		if errors.Is(err, reservationdomain.ErrGuestNotFound) {
			writeError(w, http.StatusNotFound, "guest_not_found", "guest not found")
			return
		}
		h.log.InternalError("reservations.remove_guest: delete failed", err, "reservation_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeReservationError maps admission failures onto the API error taxonomy.
// Ordering mirrors the validation order in the service so clients always get
// the earliest applicable reason.
func (h *Handlers) writeReservationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, reservationdomain.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name", "full name must be at least 3 characters")
	case errors.Is(err, reservationdomain.ErrInvalidPartySize):
		writeError(w, http.StatusBadRequest, "invalid_party_size", "party must have at least one adult and no negative counts")
	case errors.Is(err, reservationdomain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "reservation_date is required")
	case errors.Is(err, unitdomain.ErrUnitNotFound):
		h.log.BusinessError(op+": unit not found", err)
		writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
	case errors.Is(err, unitdomain.ErrAreaNotFound):
		h.log.BusinessError(op+": area not found", err)
		writeError(w, http.StatusNotFound, "area_not_found", "area not found")
	case errors.Is(err, reservationdomain.ErrActiveForContact):
		h.log.BusinessError(op+": duplicate contact", err)
		writeError(w, http.StatusConflict, "active_reservation_exists", "contact already has an outstanding reservation")
	case errors.Is(err, reservationdomain.ErrDayBlocked):
		h.log.BusinessError(op+": day blocked", err)
		writeError(w, http.StatusConflict, "day_blocked", "reservations are blocked for this area and period")
	case errors.Is(err, reservationdomain.ErrNoCapacity):
		h.log.BusinessError(op+": no capacity", err)
		writeError(w, http.StatusConflict, "area_no_capacity", "area has no remaining capacity for this period")
	case errors.Is(err, reservationdomain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, "reservation_not_found", "reservation not found")
	case errors.Is(err, reservationdomain.ErrCodeGenerationFailed),
		errors.Is(err, reservationdomain.ErrTokenGenerationFailed):
		h.log.Critical(op + ": credential space exhausted")
		writeError(w, http.StatusInternalServerError, "code_generation_failed", "could not allocate a reservation code")
	default:
		h.log.InternalError(op+": unexpected failure", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
