package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	auditdomain "reserva-go/internal/domain/audit"
	unitdomain "reserva-go/internal/domain/unit"
)

type createUnitRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type updateUnitRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type areaRequest struct {
	Name              string `json:"name"`
	CapacityAfternoon *int   `json:"capacity_afternoon"`
	CapacityNight     *int   `json:"capacity_night"`
	Photo             string `json:"photo"`
	Description       string `json:"description"`
	Icon              string `json:"icon"`
}

type updateAreaRequest struct {
	Name              *string `json:"name"`
	CapacityAfternoon *int    `json:"capacity_afternoon"`
	CapacityNight     *int    `json:"capacity_night"`
	IsActive          *bool   `json:"is_active"`
	Photo             *string `json:"photo"`
	Description       *string `json:"description"`
	Icon              *string `json:"icon"`
}

func (h *Handlers) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Units.ListUnits(r.Context())
	if err != nil {
		h.log.InternalError("units.list: query failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (h *Handlers) GetUnit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := h.Units.GetUnit(r.Context(), id)
	if err != nil {
		if errors.Is(err, unitdomain.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
			return
		}
		h.log.InternalError("units.get: query failed", err, "unit_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req createUnitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	u, err := h.Units.CreateUnit(r.Context(), unitdomain.CreateUnitInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		if errors.Is(err, unitdomain.ErrSlugTaken) {
			h.log.BusinessError("units.create: slug taken", err, "slug", req.Slug)
			writeError(w, http.StatusConflict, "slug_taken", "slug already in use")
			return
		}
		h.log.InternalError("units.create: create failed", err, "name", req.Name)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordAudit(r, auditdomain.ActionCreate, "unit", u.ID, u.Name)
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handlers) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateUnitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	u, err := h.Units.UpdateUnit(r.Context(), id, unitdomain.UpdateUnitInput{Name: req.Name, IsActive: req.IsActive})
	if err != nil {
		if errors.Is(err, unitdomain.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
			return
		}
		h.log.InternalError("units.update: update failed", err, "unit_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordAudit(r, auditdomain.ActionUpdate, "unit", u.ID, "")
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Units.DeleteUnit(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, unitdomain.ErrUnitNotFound):
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
		case errors.Is(err, unitdomain.ErrUnitHasReservations):
			h.log.BusinessError("units.delete: unit has reservations", err, "unit_id", id)
			writeError(w, http.StatusConflict, "unit_has_reservations", "unit still has reservations")
		default:
			h.log.InternalError("units.delete: delete failed", err, "unit_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionDelete, "unit", id, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListAreas(w http.ResponseWriter, r *http.Request) {
	unitID := chi.URLParam(r, "id")
	areas, err := h.Units.ListAreas(r.Context(), unitID)
	if err != nil {
		if errors.Is(err, unitdomain.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
			return
		}
		h.log.InternalError("areas.list: query failed", err, "unit_id", unitID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"areas": areas})
}

func (h *Handlers) CreateArea(w http.ResponseWriter, r *http.Request) {
	unitID := chi.URLParam(r, "id")
	var req areaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	a, err := h.Units.CreateArea(r.Context(), unitID, unitdomain.CreateAreaInput{
		Name:              req.Name,
		CapacityAfternoon: req.CapacityAfternoon,
		CapacityNight:     req.CapacityNight,
		Photo:             req.Photo,
		Description:       req.Description,
		Icon:              req.Icon,
	})
	if err != nil {
		switch {
		case errors.Is(err, unitdomain.ErrUnitNotFound):
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
		case errors.Is(err, unitdomain.ErrAreaNameTaken):
			h.log.BusinessError("areas.create: name taken", err, "unit_id", unitID, "name", req.Name)
			writeError(w, http.StatusConflict, "area_name_taken", "area name already in use for this unit")
		case errors.Is(err, unitdomain.ErrInvalidCapacity):
			writeError(w, http.StatusBadRequest, "invalid_capacity", "capacities must be zero or positive")
		default:
			h.log.InternalError("areas.create: create failed", err, "unit_id", unitID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionCreate, "area", a.ID, a.Name)
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) UpdateArea(w http.ResponseWriter, r *http.Request) {
	areaID := chi.URLParam(r, "area_id")
	var req updateAreaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	a, err := h.Units.UpdateArea(r.Context(), areaID, unitdomain.UpdateAreaInput{
		Name:              req.Name,
		CapacityAfternoon: req.CapacityAfternoon,
		CapacityNight:     req.CapacityNight,
		IsActive:          req.IsActive,
		Photo:             req.Photo,
		Description:       req.Description,
		Icon:              req.Icon,
	})
	if err != nil {
		switch {
		case errors.Is(err, unitdomain.ErrAreaNotFound):
			writeError(w, http.StatusNotFound, "area_not_found", "area not found")
		case errors.Is(err, unitdomain.ErrAreaNameTaken):
			writeError(w, http.StatusConflict, "area_name_taken", "area name already in use for this unit")
		case errors.Is(err, unitdomain.ErrInvalidCapacity):
			writeError(w, http.StatusBadRequest, "invalid_capacity", "capacities must be zero or positive")
		default:
			h.log.InternalError("areas.update: update failed", err, "area_id", areaID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionUpdate, "area", a.ID, "")
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) DeleteArea(w http.ResponseWriter, r *http.Request) {
	areaID := chi.URLParam(r, "area_id")
	if err := h.Units.DeleteArea(r.Context(), areaID); err != nil {
		switch {
		case errors.Is(err, unitdomain.ErrAreaNotFound):
			writeError(w, http.StatusNotFound, "area_not_found", "area not found")
		case errors.Is(err, unitdomain.ErrAreaHasReservations):
			h.log.BusinessError("areas.delete: area has reservations", err, "area_id", areaID)
			writeError(w, http.StatusConflict, "area_has_reservations", "area still has reservations")
		default:
			h.log.InternalError("areas.delete: delete failed", err, "area_id", areaID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionDelete, "area", areaID, "")
	w.WriteHeader(http.StatusNoContent)
}
