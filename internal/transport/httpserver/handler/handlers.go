package handler

import (
	"net/http"

	auditdomain "reserva-go/internal/domain/audit"
	availabilitydomain "reserva-go/internal/domain/availability"
	blockdomain "reserva-go/internal/domain/block"
	reservationdomain "reserva-go/internal/domain/reservation"
	staffdomain "reserva-go/internal/domain/staff"
	unitdomain "reserva-go/internal/domain/unit"
	"reserva-go/pkg/logger"
)

type Handlers struct {
	Units        *unitdomain.Service
	Blocks       *blockdomain.Service
	Availability *availabilitydomain.Service
	Reservations *reservationdomain.Service
	Staff        *staffdomain.Service
	Audit        *auditdomain.Recorder
	log          logger.Logger
}

func New(
	units *unitdomain.Service,
	blocks *blockdomain.Service,
	avail *availabilitydomain.Service,
	reservations *reservationdomain.Service,
	staff *staffdomain.Service,
	auditRec *auditdomain.Recorder,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Units:        units,
		Blocks:       blocks,
		Availability: avail,
		Reservations: reservations,
		Staff:        staff,
		Audit:        auditRec,
		log:          log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
