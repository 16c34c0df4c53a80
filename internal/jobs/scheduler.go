package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"reserva-go/internal/config"
	"reserva-go/internal/domain/reservation"
	"reserva-go/internal/domain/schedule"
	"reserva-go/internal/notify"
	"reserva-go/pkg/logger"
)

// Scheduler owns the recurring back-office work: the morning reminder run
// and the hourly no-show sweep.
type Scheduler struct {
	cron         *cron.Cron
	reservations *reservation.Service
	sender       notify.Sender
	cfg          config.JobsConfig
	grace        time.Duration
	log          logger.Logger
}

func NewScheduler(reservations *reservation.Service, sender notify.Sender, cfg config.JobsConfig, grace time.Duration, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		reservations: reservations,
		sender:       sender,
		cfg:          cfg,
		grace:        grace,
		log:          log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, func() { s.sendDailyReminders(ctx) }); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.NoShowSpec, func() { s.sweepNoShows(ctx) }); err != nil {
		return fmt.Errorf("schedule no-show sweep: %w", err)
	}
	s.cron.Start()
	s.log.Info("jobs: scheduler started",
		"reminder_spec", s.cfg.ReminderSpec, "no_show_spec", s.cfg.NoShowSpec)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// sendDailyReminders messages everyone still awaiting check-in today.
func (s *Scheduler) sendDailyReminders(ctx context.Context) {
	from, to := schedule.DayBounds(time.Now())
	pending, err := s.reservations.AwaitingBetween(ctx, from, to)
	if err != nil {
		s.log.InternalError("jobs: load reminder batch", err)
		return
	}
	sent := 0
	for _, r := range pending {
		if r.Phone == "" || s.sender == nil {
			continue
		}
		msg := fmt.Sprintf(
			"Hola %s, te esperamos hoy a las %s en %s (%s). Código de reserva: %s.",
			r.FullName, r.ReservationDate.Format("15:04"), r.UnitName, r.AreaName, r.ReservationCode,
		)
		if err := s.sender.Send(ctx, r.Phone, msg); err != nil {
			s.log.Warn("jobs: reminder send failed", "reservation_id", r.ID, "err", err)
			continue
		}
		sent++
	}
	s.log.Info("jobs: reminders processed", "pending", len(pending), "sent", sent)
}

func (s *Scheduler) sweepNoShows(ctx context.Context) {
	n, err := s.reservations.SweepNoShows(ctx, s.grace)
	if err != nil {
		s.log.InternalError("jobs: no-show sweep", err)
		return
	}
	if n > 0 {
		s.log.Info("jobs: reservations marked as no-show", "count", n)
	}
}
