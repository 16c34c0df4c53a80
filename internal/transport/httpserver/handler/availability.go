package handler

import (
	"errors"
	"net/http"
	"time"

	availabilitydomain "reserva-go/internal/domain/availability"
	"reserva-go/internal/domain/schedule"
	unitdomain "reserva-go/internal/domain/unit"
)

// areaPeriodResponse flattens one area's slice for the single-period view.
type areaPeriodResponse struct {
	AreaID      string `json:"area_id"`
	AreaName    string `json:"area_name"`
	Photo       string `json:"photo,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	availabilitydomain.PeriodAvailability
}

// GetAvailability is public, the booking widget polls it while a guest picks
// a slot. Without a date it returns static area metadata only; with a date it
// returns the whole-day view; with date and time it narrows to the period the
// time classifies into.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unitID, unitName := q.Get("unit_id"), q.Get("unit")
	if unitID == "" && unitName == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id or unit is required")
		return
	}

	date, err := parseDateParam(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	areaIDs := parseCSV(q.Get("area_ids"))

	if date == nil {
		h.listAreaMetadata(w, r, unitID, unitName, areaIDs)
		return
	}

	query := availabilitydomain.Query{
		UnitID:   unitID,
		UnitName: unitName,
		AreaIDs:  areaIDs,
		Date:     *date,
	}
	areas, err := h.Availability.Compute(r.Context(), query)
	if err != nil {
		if errors.Is(err, unitdomain.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
			return
		}
		h.log.InternalError("availability.get: compute failed", err, "unit_id", unitID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if clock := q.Get("time"); clock != "" {
		parsed, err := time.Parse("15:04", clock)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}
		at := time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
		period := schedule.Classify(at)

		out := make([]areaPeriodResponse, 0, len(areas))
		for _, a := range areas {
			slice := a.Afternoon
			if period == schedule.PeriodNight {
				slice = a.Night
			}
			out = append(out, areaPeriodResponse{
				AreaID:             a.AreaID,
				AreaName:           a.AreaName,
				Photo:              a.Photo,
				Description:        a.Description,
				Icon:               a.Icon,
				PeriodAvailability: slice,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"date":   date.Format("2006-01-02"),
			"time":   clock,
			"period": period,
			"areas":  out,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date.Format("2006-01-02"),
		"areas": areas,
	})
}

// listAreaMetadata answers the dateless call with the static picker data.
// Capacity numbers need a date, so none are computed here.
func (h *Handlers) listAreaMetadata(w http.ResponseWriter, r *http.Request, unitID, unitName string, areaIDs []string) {
	u, err := h.Units.ResolveUnit(r.Context(), unitID, unitName)
	if err != nil {
		if errors.Is(err, unitdomain.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
			return
		}
		h.log.InternalError("availability.get: resolve unit failed", err, "unit_id", unitID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	all, err := h.Units.ListAreasByIDs(r.Context(), u.ID, areaIDs)
	if err != nil {
		h.log.InternalError("availability.get: list areas failed", err, "unit_id", u.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	areas := make([]unitdomain.Area, 0, len(all))
	for _, a := range all {
		if a.IsActive {
			areas = append(areas, a)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unit":  u.Name,
		"areas": areas,
	})
}
