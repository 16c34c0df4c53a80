package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"reserva-go/internal/domain/schedule"
	"reserva-go/internal/domain/unit"
)

// BlockChecker answers whether an area is suppressed for a day and period.
type BlockChecker interface {
	IsBlocked(ctx context.Context, unitID, areaID string, day time.Time, p schedule.Period) (bool, error)
}

// EventPublisher receives lifecycle events after the write has committed.
// Implementations must not fail the request path.
type EventPublisher interface {
	ReservationConfirmed(ctx context.Context, r *Reservation)
	ReservationCheckedIn(ctx context.Context, r *Reservation)
	ReservationCancelled(ctx context.Context, r *Reservation)
}

type Config struct {
	QRTokenTTL    time.Duration
	CodeAttempts  int
	TokenAttempts int
}

type Service struct {
	repo   Repository
	units  *unit.Service
	blocks BlockChecker
	events EventPublisher
	cfg    Config
	now    func() time.Time
}

func NewService(repo Repository, units *unit.Service, blocks BlockChecker, events EventPublisher, cfg Config) *Service {
	if cfg.QRTokenTTL <= 0 {
		cfg.QRTokenTTL = 48 * time.Hour
	}
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = 25
	}
	if cfg.TokenAttempts <= 0 {
		cfg.TokenAttempts = 8
	}
	return &Service{
		repo:   repo,
		units:  units,
		blocks: blocks,
		events: events,
		cfg:    cfg,
		now:    time.Now,
	}
}

type CreateInput struct {
	FullName        string
	People          int
	Kids            int
	ReservationDate time.Time
	UnitID          string
	UnitName        string
	AreaID          string
	AreaName        string
	Email           string
	Phone           string
	UTMSource       string
	UTMMedium       string
	UTMCampaign     string
	UTMContent      string
	UTMTerm         string
}

// Create admits a party against an area for the period the timestamp
// classifies into. The resolution and validation steps run in order so the
// caller always sees the earliest applicable failure; the capacity check and
// insert share one transaction under the area admission lock.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Reservation, error) {
	name := strings.TrimSpace(input.FullName)
	if len(name) < 3 {
		return nil, ErrInvalidName
	}
	if input.People < 1 || input.Kids < 0 {
		return nil, ErrInvalidPartySize
	}
	if input.ReservationDate.IsZero() {
		return nil, ErrInvalidDate
	}

	u, err := s.units.ResolveUnit(ctx, input.UnitID, input.UnitName)
	if err != nil {
		return nil, err
	}
	area, err := s.units.ResolveArea(ctx, u, input.AreaID, input.AreaName)
	if err != nil {
		return nil, err
	}

	// One outstanding unconfirmed reservation per contact, across all units
	// and days. Checked before the block so a caller hitting both conditions
	// sees the duplicate first.
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)
	if email != "" || phone != "" {
		taken, err := s.repo.HasActiveByContact(ctx, email, phone, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrActiveForContact
		}
	}

	period := schedule.Classify(input.ReservationDate)
	blocked, err := s.blocks.IsBlocked(ctx, u.ID, area.ID, input.ReservationDate, period)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrDayBlocked
	}

	res := &Reservation{
		ID:              uuid.NewString(),
		FullName:        name,
		People:          input.People,
		Kids:            input.Kids,
		ReservationDate: input.ReservationDate,
		UnitID:          &u.ID,
		AreaID:          &area.ID,
		UnitName:        u.Name,
		AreaName:        area.Name,
		Status:          StatusAwaitingCheckin,
		QRExpiresAt:     s.now().Add(s.cfg.QRTokenTTL),
		Email:           email,
		Phone:           phone,
		UTMSource:       input.UTMSource,
		UTMMedium:       input.UTMMedium,
		UTMCampaign:     input.UTMCampaign,
		UTMContent:      input.UTMContent,
		UTMTerm:         input.UTMTerm,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockArea(ctx, area.ID); err != nil {
			return err
		}

		if err := s.ensureCapacity(ctx, tx, area, input.ReservationDate, period, res.PartySize(), 0); err != nil {
			return err
		}

		code, err := s.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}
		token, err := s.uniqueToken(ctx, tx)
		if err != nil {
			return err
		}
		res.ReservationCode = code
		res.QRToken = token

		return tx.Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.ReservationConfirmed(ctx, res)
	}
	return res, nil
}

type UpdateInput struct {
	FullName        *string
	People          *int
	Kids            *int
	ReservationDate *time.Time
	UnitID          *string
	UnitName        *string
	AreaID          *string
	AreaName        *string
	Email           *string
	Phone           *string
}

// Update re-runs admission for the new shape of the reservation. When the
// move stays inside the same area, day and period, the reservation's own
// seats are credited back before the remaining capacity is compared, so
// shrinking or renaming a party in a full area always succeeds.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Reservation, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := existing.FullName
	if input.FullName != nil {
		name = strings.TrimSpace(*input.FullName)
	}
	if len(name) < 3 {
		return nil, ErrInvalidName
	}
	people := existing.People
	if input.People != nil {
		people = *input.People
	}
	kids := existing.Kids
	if input.Kids != nil {
		kids = *input.Kids
	}
	if people < 1 || kids < 0 {
		return nil, ErrInvalidPartySize
	}
	date := existing.ReservationDate
	if input.ReservationDate != nil {
		date = *input.ReservationDate
	}
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	unitID, unitName := derefOr(input.UnitID, strPtr(existing.UnitID)), derefOr(input.UnitName, existing.UnitName)
	areaID, areaName := derefOr(input.AreaID, strPtr(existing.AreaID)), derefOr(input.AreaName, existing.AreaName)

	u, err := s.units.ResolveUnit(ctx, unitID, unitName)
	if err != nil {
		return nil, err
	}
	area, err := s.units.ResolveArea(ctx, u, areaID, areaName)
	if err != nil {
		return nil, err
	}

	period := schedule.Classify(date)
	blocked, err := s.blocks.IsBlocked(ctx, u.ID, area.ID, date, period)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrDayBlocked
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockArea(ctx, area.ID); err != nil {
			return err
		}

		credit := 0
		if existing.Status.CountsTowardCapacity() && existing.AreaID != nil && *existing.AreaID == area.ID {
			if schedule.Midnight(existing.ReservationDate).Equal(schedule.Midnight(date)) &&
				schedule.Classify(existing.ReservationDate) == period {
				credit = existing.PartySize()
			}
		}
		if err := s.ensureCapacity(ctx, tx, area, date, period, people+kids, credit); err != nil {
			return err
		}

		existing.FullName = name
		existing.People = people
		existing.Kids = kids
		existing.ReservationDate = date
		existing.UnitID = &u.ID
		existing.AreaID = &area.ID
		existing.UnitName = u.Name
		existing.AreaName = area.Name
		if input.Email != nil {
			existing.Email = strings.TrimSpace(*input.Email)
		}
		if input.Phone != nil {
			existing.Phone = strings.TrimSpace(*input.Phone)
		}
		return tx.Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Reservation, int64, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Cancel keeps the row for history but releases its seats.
func (s *Service) Cancel(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Status = StatusCancelled
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.ReservationCancelled(ctx, res)
	}
	return res, nil
}

// SetStatus is the administrative override used by staff tooling.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Reservation, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Status = status
	if status == StatusCheckedIn && res.CheckedInAt == nil {
		now := s.now()
		res.CheckedInAt = &now
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CheckIn marks arrival by reservation id. A second attempt is rejected so
// one QR cannot seat two parties.
func (s *Service) CheckIn(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, res)
}

// CheckInByToken marks arrival via the QR token, refusing expired tokens.
func (s *Service) CheckInByToken(ctx context.Context, token string) (*Reservation, error) {
	res, err := s.repo.GetByQRToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.now().After(res.QRExpiresAt) {
		return nil, ErrQRExpired
	}
	return s.checkIn(ctx, res)
}

func (s *Service) checkIn(ctx context.Context, res *Reservation) (*Reservation, error) {
	if res.CheckedInAt != nil || res.Status == StatusCheckedIn {
		return nil, ErrAlreadyCheckedIn
	}
	now := s.now()
	res.Status = StatusCheckedIn
	res.CheckedInAt = &now
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.ReservationCheckedIn(ctx, res)
	}
	return res, nil
}

// RenewQR issues a fresh token and expiry and re-arms the reservation for
// check-in.
func (s *Service) RenewQR(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		token, err := s.uniqueToken(ctx, tx)
		if err != nil {
			return err
		}
		res.QRToken = token
		res.QRExpiresAt = s.now().Add(s.cfg.QRTokenTTL)
		res.Status = StatusAwaitingCheckin
		res.CheckedInAt = nil
		return tx.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) AddGuest(ctx context.Context, reservationID, name, email string, role GuestRole) (*Guest, error) {
	if _, err := s.repo.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	if role == "" {
		role = GuestRoleGuest
	}
	email = strings.ToLower(strings.TrimSpace(email))
	guests, err := s.repo.ListGuests(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	for _, g := range guests {
		if g.Email == email {
			return nil, ErrGuestEmailTaken
		}
	}
	g := &Guest{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		Name:          strings.TrimSpace(name),
		Email:         email,
		Role:          role,
	}
	if err := s.repo.AddGuest(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) ListGuests(ctx context.Context, reservationID string) ([]Guest, error) {
	return s.repo.ListGuests(ctx, reservationID)
}

func (s *Service) RemoveGuest(ctx context.Context, reservationID, guestID string) error {
	return s.repo.DeleteGuest(ctx, reservationID, guestID)
}

func (s *Service) AwaitingBetween(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	return s.repo.ListAwaitingBetween(ctx, from, to)
}

// SweepNoShows marks everything still awaiting check-in whose timestamp
// passed more than grace ago.
func (s *Service) SweepNoShows(ctx context.Context, grace time.Duration) (int64, error) {
	return s.repo.MarkNoShows(ctx, s.now().Add(-grace))
}

// ensureCapacity compares the party against what is left of the area's
// capacity for the period window, with credit seats already discounted from
// usage. Callers must hold the area admission lock.
func (s *Service) ensureCapacity(ctx context.Context, tx Repository, area *unit.Area, at time.Time, p schedule.Period, want, credit int) error {
	capacity := area.CapacityFor(p == schedule.PeriodNight)
	from, to := schedule.Window(at, p)
	used, err := tx.UsedByArea(ctx, []string{area.ID}, from, to)
	if err != nil {
		return err
	}
	remaining := capacity - used[area.ID] + credit
	if want > remaining {
		return ErrNoCapacity
	}
	return nil
}

func (s *Service) uniqueCode(ctx context.Context, tx Repository) (string, error) {
	for i := 0; i < s.cfg.CodeAttempts; i++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		taken, err := tx.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func (s *Service) uniqueToken(ctx context.Context, tx Repository) (string, error) {
	for i := 0; i < s.cfg.TokenAttempts; i++ {
		token, err := generateQRToken()
		if err != nil {
			return "", err
		}
		taken, err := tx.IsQRTokenTaken(ctx, token)
		if err != nil {
			return "", err
		}
		if !taken {
			return token, nil
		}
	}
	return "", ErrTokenGenerationFailed
}

func derefOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
