package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	auditdomain "reserva-go/internal/domain/audit"
	blockdomain "reserva-go/internal/domain/block"
	unitdomain "reserva-go/internal/domain/unit"
)

type createBlockRequest struct {
	UnitID string                  `json:"unit_id"`
	AreaID *string                 `json:"area_id"`
	Date   string                  `json:"date"`
	Period blockdomain.BlockPeriod `json:"period"`
	Reason string                  `json:"reason"`
}

func (h *Handlers) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	date, err := parseDateRequired(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	if _, err := h.Units.GetUnit(r.Context(), req.UnitID); err != nil {
		if errors.Is(err, unitdomain.ErrUnitNotFound) {
			writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
			return
		}
		h.log.InternalError("blocks.create: load unit failed", err, "unit_id", req.UnitID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	b, err := h.Blocks.Create(r.Context(), blockdomain.CreateInput{
		UnitID: req.UnitID,
		AreaID: req.AreaID,
		Date:   date,
		Period: req.Period,
		Reason: req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, blockdomain.ErrInvalidPeriod):
			writeError(w, http.StatusBadRequest, "invalid_period", "period must be AFTERNOON, NIGHT or ALL_DAY")
		case errors.Is(err, blockdomain.ErrDuplicateBlock):
			h.log.BusinessError("blocks.create: duplicate block", err, "unit_id", req.UnitID)
			writeError(w, http.StatusConflict, "duplicate_block", "an identical block already exists")
		default:
			h.log.InternalError("blocks.create: create failed", err, "unit_id", req.UnitID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordAudit(r, auditdomain.ActionBlock, "reservation_block", b.ID, string(b.Period))
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) ListBlocks(w http.ResponseWriter, r *http.Request) {
	unitID := r.URL.Query().Get("unit_id")
	if unitID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "unit_id is required")
		return
	}
	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
		return
	}

	blocks, err := h.Blocks.List(r.Context(), unitID, from, to)
	if err != nil {
		h.log.InternalError("blocks.list: query failed", err, "unit_id", unitID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func (h *Handlers) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Blocks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, blockdomain.ErrBlockNotFound) {
			writeError(w, http.StatusNotFound, "block_not_found", "block not found")
			return
		}
		h.log.InternalError("blocks.delete: delete failed", err, "block_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordAudit(r, auditdomain.ActionUnblock, "reservation_block", id, "")
	w.WriteHeader(http.StatusNoContent)
}
