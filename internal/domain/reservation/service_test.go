package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"reserva-go/internal/domain/schedule"
	"reserva-go/internal/domain/unit"
)

// fakeRepo keeps reservations in memory. LockArea takes a real per-area
// mutex held until the transaction closure returns, so concurrent admissions
// serialize the same way the row lock does in production.
type fakeRepo struct {
	mu        sync.Mutex
	areaLocks sync.Map
	rows      map[string]*Reservation
	guests    map[string][]Guest
	codeBusy  bool
	tokenBusy bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:   make(map[string]*Reservation),
		guests: make(map[string][]Guest),
	}
}

type fakeTx struct {
	*fakeRepo
	held []*sync.Mutex
}

func (f *fakeRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	tx := &fakeTx{fakeRepo: f}
	defer func() {
		for i := len(tx.held) - 1; i >= 0; i-- {
			tx.held[i].Unlock()
		}
	}()
	return fn(tx)
}

func (f *fakeRepo) LockArea(ctx context.Context, areaID string) error {
	return errors.New("lock outside transaction")
}

func (t *fakeTx) LockArea(ctx context.Context, areaID string) error {
	v, _ := t.areaLocks.LoadOrStore(areaID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	t.held = append(t.held, m)
	return nil
}

func (f *fakeRepo) Create(ctx context.Context, r *Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ReservationCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrReservationNotFound
}

func (f *fakeRepo) GetByQRToken(ctx context.Context, token string) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.QRToken == token {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrReservationNotFound
}

func (f *fakeRepo) Update(ctx context.Context, r *Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[r.ID]; !ok {
		return ErrReservationNotFound
	}
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return ErrReservationNotFound
	}
	delete(f.rows, id)
	delete(f.guests, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) UsedByArea(ctx context.Context, areaIDs []string, from, to time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[string]bool, len(areaIDs))
	for _, id := range areaIDs {
		want[id] = true
	}
	used := make(map[string]int)
	for _, r := range f.rows {
		if !r.Status.CountsTowardCapacity() || r.AreaID == nil || !want[*r.AreaID] {
			continue
		}
		if r.ReservationDate.Before(from) || r.ReservationDate.After(to) {
			continue
		}
		used[*r.AreaID] += r.PartySize()
	}
	return used, nil
}

func (f *fakeRepo) HasActiveByContact(ctx context.Context, email, phone, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == excludeID || r.Status != StatusAwaitingCheckin {
			continue
		}
		if (email != "" && r.Email == email) || (phone != "" && r.Phone == phone) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codeBusy {
		return true, nil
	}
	for _, r := range f.rows {
		if r.ReservationCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) IsQRTokenTaken(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenBusy {
		return true, nil
	}
	for _, r := range f.rows {
		if r.QRToken == token {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) AddGuest(ctx context.Context, g *Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guests[g.ReservationID] = append(f.guests[g.ReservationID], *g)
	return nil
}

func (f *fakeRepo) ListGuests(ctx context.Context, reservationID string) ([]Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Guest(nil), f.guests[reservationID]...), nil
}

func (f *fakeRepo) DeleteGuest(ctx context.Context, reservationID, guestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.guests[reservationID]
	for i, g := range list {
		if g.ID == guestID {
			f.guests[reservationID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrGuestNotFound
}

func (f *fakeRepo) ListAwaitingBetween(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.rows {
		if r.Status == StatusAwaitingCheckin && !r.ReservationDate.Before(from) && !r.ReservationDate.After(to) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.Status == StatusAwaitingCheckin && r.ReservationDate.Before(cutoff) {
			r.Status = StatusNoShow
			n++
		}
	}
	return n, nil
}

// fakeUnitRepo backs a real unit.Service with just the lookups resolution
// needs.
type fakeUnitRepo struct {
	units map[string]*unit.Unit
	areas map[string]*unit.Area
}

func (f *fakeUnitRepo) Transaction(ctx context.Context, fn func(unit.Repository) error) error {
	return fn(f)
}

func (f *fakeUnitRepo) CreateUnit(ctx context.Context, u *unit.Unit) error { return nil }

func (f *fakeUnitRepo) GetUnitByID(ctx context.Context, id string) (*unit.Unit, error) {
	u, ok := f.units[id]
	if !ok {
		return nil, unit.ErrUnitNotFound
	}
	return u, nil
}

func (f *fakeUnitRepo) GetUnitBySlug(ctx context.Context, slug string) (*unit.Unit, error) {
	return nil, unit.ErrUnitNotFound
}

func (f *fakeUnitRepo) FindUnitByName(ctx context.Context, name string) (*unit.Unit, error) {
	for _, u := range f.units {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, unit.ErrUnitNotFound
}

func (f *fakeUnitRepo) ListUnits(ctx context.Context) ([]unit.Unit, error)    { return nil, nil }
func (f *fakeUnitRepo) UpdateUnit(ctx context.Context, u *unit.Unit) error    { return nil }
func (f *fakeUnitRepo) DeleteUnit(ctx context.Context, id string) error       { return nil }
func (f *fakeUnitRepo) IsSlugTaken(ctx context.Context, s string) (bool, error) {
	return false, nil
}
func (f *fakeUnitRepo) CountUnitReservations(ctx context.Context, id string) (int64, error) {
	return 0, nil
}
func (f *fakeUnitRepo) CreateArea(ctx context.Context, a *unit.Area) error { return nil }

func (f *fakeUnitRepo) GetAreaByID(ctx context.Context, id string) (*unit.Area, error) {
	a, ok := f.areas[id]
	if !ok {
		return nil, unit.ErrAreaNotFound
	}
	return a, nil
}

func (f *fakeUnitRepo) FindAreaByName(ctx context.Context, unitID, name string) (*unit.Area, error) {
	for _, a := range f.areas {
		if a.UnitID == unitID && a.Name == name {
			return a, nil
		}
	}
	return nil, unit.ErrAreaNotFound
}

func (f *fakeUnitRepo) ListAreas(ctx context.Context, unitID string) ([]unit.Area, error) {
	return nil, nil
}
func (f *fakeUnitRepo) ListAreasByIDs(ctx context.Context, unitID string, ids []string) ([]unit.Area, error) {
	return nil, nil
}
func (f *fakeUnitRepo) UpdateArea(ctx context.Context, a *unit.Area) error { return nil }
func (f *fakeUnitRepo) DeleteArea(ctx context.Context, id string) error    { return nil }
func (f *fakeUnitRepo) CountAreaReservations(ctx context.Context, id string) (int64, error) {
	return 0, nil
}

type blockKey struct {
	areaID string
	period schedule.Period
}

type fakeBlocks struct {
	blocked map[blockKey]bool
}

func (f *fakeBlocks) IsBlocked(ctx context.Context, unitID, areaID string, day time.Time, p schedule.Period) (bool, error) {
	if f.blocked == nil {
		return false, nil
	}
	return f.blocked[blockKey{areaID: areaID, period: p}], nil
}

type fakeEvents struct {
	mu        sync.Mutex
	confirmed int
	checkedIn int
	cancelled int
}

func (f *fakeEvents) ReservationConfirmed(ctx context.Context, r *Reservation) {
	f.mu.Lock()
	f.confirmed++
	f.mu.Unlock()
}

func (f *fakeEvents) ReservationCheckedIn(ctx context.Context, r *Reservation) {
	f.mu.Lock()
	f.checkedIn++
	f.mu.Unlock()
}

func (f *fakeEvents) ReservationCancelled(ctx context.Context, r *Reservation) {
	f.mu.Lock()
	f.cancelled++
	f.mu.Unlock()
}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	blocks  *fakeBlocks
	events  *fakeEvents
	unitID  string
	hallID  string
	patioID string
}

func intp(v int) *int { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	unitID := uuid.NewString()
	hallID := uuid.NewString()
	patioID := uuid.NewString()
	units := &fakeUnitRepo{
		units: map[string]*unit.Unit{
			unitID: {ID: unitID, Name: "Casa Centro", Slug: "casa-centro", IsActive: true},
		},
		areas: map[string]*unit.Area{
			hallID:  {ID: hallID, UnitID: unitID, Name: "Salón Principal", CapacityAfternoon: intp(10), CapacityNight: intp(8), IsActive: true},
			patioID: {ID: patioID, UnitID: unitID, Name: "Patio", CapacityAfternoon: intp(4), CapacityNight: intp(4), IsActive: true},
		},
	}
	repo := newFakeRepo()
	blocks := &fakeBlocks{}
	events := &fakeEvents{}
	svc := NewService(repo, unit.NewService(units), blocks, events, Config{})
	return &fixture{svc: svc, repo: repo, blocks: blocks, events: events, unitID: unitID, hallID: hallID, patioID: patioID}
}

func afternoonAt(hour int) time.Time {
	return time.Date(2026, 9, 12, hour, 0, 0, 0, time.UTC)
}

func (fx *fixture) create(t *testing.T, in CreateInput) *Reservation {
	t.Helper()
	r, err := fx.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return r
}

func TestCreateAdmitsAndIssuesCredentials(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{
		FullName:        "Ana García",
		People:          2,
		Kids:            1,
		ReservationDate: afternoonAt(14),
		UnitID:          fx.unitID,
		AreaID:          fx.hallID,
		Email:           "ana@example.com",
	})
	if r.Status != StatusAwaitingCheckin {
		t.Fatalf("status = %q, want %q", r.Status, StatusAwaitingCheckin)
	}
	if len(r.ReservationCode) != 6 {
		t.Fatalf("code %q should have 6 characters", r.ReservationCode)
	}
	if len(r.QRToken) != 64 {
		t.Fatalf("qr token length = %d, want 64", len(r.QRToken))
	}
	if r.QRExpiresAt.Before(time.Now().Add(47 * time.Hour)) {
		t.Fatalf("qr expiry %v is sooner than the configured TTL", r.QRExpiresAt)
	}
	if r.UnitID == nil || *r.UnitID != fx.unitID || r.AreaID == nil || *r.AreaID != fx.hallID {
		t.Fatal("unit and area ids should be resolved and stored")
	}
	if fx.events.confirmed != 1 {
		t.Fatalf("confirmed events = %d, want 1", fx.events.confirmed)
	}
}

func TestCreateRejectsWhenPeriodIsFull(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, CreateInput{FullName: "Primera Mesa", People: 6, ReservationDate: afternoonAt(13), UnitID: fx.unitID, AreaID: fx.hallID})
	fx.create(t, CreateInput{FullName: "Segunda Mesa", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})

	_, err := fx.svc.Create(context.Background(), CreateInput{
		FullName: "Tercera Mesa", People: 3, ReservationDate: afternoonAt(15), UnitID: fx.unitID, AreaID: fx.hallID,
	})
	if !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}

	// Two seats remain, an exact fit must still go through.
	fx.create(t, CreateInput{FullName: "Cuarta Mesa", People: 2, ReservationDate: afternoonAt(15), UnitID: fx.unitID, AreaID: fx.hallID})
}

func TestCreatePeriodsDoNotShareCapacity(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, CreateInput{FullName: "Tarde Llena", People: 10, ReservationDate: afternoonAt(13), UnitID: fx.unitID, AreaID: fx.hallID})

	// The afternoon is saturated but the night window counts separately.
	night := time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)
	fx.create(t, CreateInput{FullName: "Cena Tardía", People: 8, ReservationDate: night, UnitID: fx.unitID, AreaID: fx.hallID})
}

func TestCreateCancelledSeatsAreReleased(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Grande", People: 10, ReservationDate: afternoonAt(13), UnitID: fx.unitID, AreaID: fx.hallID})
	if _, err := fx.svc.Cancel(context.Background(), r.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	fx.create(t, CreateInput{FullName: "Mesa Nueva", People: 10, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})
}

func TestCreateRejectsBlockedPeriod(t *testing.T) {
	fx := newFixture(t)
	fx.blocks.blocked = map[blockKey]bool{{areaID: fx.hallID, period: schedule.PeriodAfternoon}: true}

	_, err := fx.svc.Create(context.Background(), CreateInput{
		FullName: "Mesa Bloqueada", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID,
	})
	if !errors.Is(err, ErrDayBlocked) {
		t.Fatalf("err = %v, want ErrDayBlocked", err)
	}

	// The other area and the night period stay open.
	fx.create(t, CreateInput{FullName: "Mesa Patio", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.patioID})
}

func TestCreateRejectsOutstandingContact(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, CreateInput{
		FullName: "Ana García", People: 2, ReservationDate: afternoonAt(13),
		UnitID: fx.unitID, AreaID: fx.hallID, Email: "ana@example.com",
	})
	_, err := fx.svc.Create(context.Background(), CreateInput{
		FullName: "Ana Otra Vez", People: 2, ReservationDate: afternoonAt(20),
		UnitID: fx.unitID, AreaID: fx.patioID, Email: "ana@example.com",
	})
	if !errors.Is(err, ErrActiveForContact) {
		t.Fatalf("err = %v, want ErrActiveForContact", err)
	}

	// The hold is global, a booking on another day is rejected too.
	_, err = fx.svc.Create(context.Background(), CreateInput{
		FullName: "Ana García", People: 2, ReservationDate: afternoonAt(13).AddDate(0, 0, 3),
		UnitID: fx.unitID, AreaID: fx.hallID, Email: "ana@example.com",
	})
	if !errors.Is(err, ErrActiveForContact) {
		t.Fatalf("err on another day = %v, want ErrActiveForContact", err)
	}
}

func TestCreateAllowsNewBookingOnceCheckedIn(t *testing.T) {
	fx := newFixture(t)
	first := fx.create(t, CreateInput{
		FullName: "Ana García", People: 2, ReservationDate: afternoonAt(13),
		UnitID: fx.unitID, AreaID: fx.hallID, Email: "ana@example.com",
	})
	if _, err := fx.svc.CheckIn(context.Background(), first.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	// Only the unconfirmed reservation holds the contact. Checked-in history
	// never blocks the next booking.
	fx.create(t, CreateInput{
		FullName: "Ana García", People: 2, ReservationDate: afternoonAt(13).AddDate(0, 0, 1),
		UnitID: fx.unitID, AreaID: fx.hallID, Email: "ana@example.com",
	})
}

func TestCreateReportsOutstandingContactBeforeBlock(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, CreateInput{
		FullName: "Ana García", People: 2, ReservationDate: afternoonAt(13),
		UnitID: fx.unitID, AreaID: fx.hallID, Email: "ana@example.com",
	})
	fx.blocks.blocked = map[blockKey]bool{{areaID: fx.patioID, period: schedule.PeriodAfternoon}: true}

	_, err := fx.svc.Create(context.Background(), CreateInput{
		FullName: "Ana Otra Vez", People: 2, ReservationDate: afternoonAt(14),
		UnitID: fx.unitID, AreaID: fx.patioID, Email: "ana@example.com",
	})
	if !errors.Is(err, ErrActiveForContact) {
		t.Fatalf("err = %v, want ErrActiveForContact ahead of ErrDayBlocked", err)
	}
}

func TestCreateValidation(t *testing.T) {
	fx := newFixture(t)
	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"short name", CreateInput{FullName: "Al", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID}, ErrInvalidName},
		{"zero adults", CreateInput{FullName: "Mesa Vacía", People: 0, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID}, ErrInvalidPartySize},
		{"negative kids", CreateInput{FullName: "Mesa Rara", People: 2, Kids: -1, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID}, ErrInvalidPartySize},
		{"missing date", CreateInput{FullName: "Sin Fecha", People: 2, UnitID: fx.unitID, AreaID: fx.hallID}, ErrInvalidDate},
		{"unknown unit", CreateInput{FullName: "Mesa Perdida", People: 2, ReservationDate: afternoonAt(14), UnitID: uuid.NewString(), AreaID: fx.hallID}, unit.ErrUnitNotFound},
		{"unknown area", CreateInput{FullName: "Mesa Perdida", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: uuid.NewString()}, unit.ErrAreaNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := fx.svc.Create(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateResolvesByLegacyNames(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{
		FullName: "Mesa Legada", People: 2, ReservationDate: afternoonAt(14),
		UnitName: "Casa Centro", AreaName: "Patio",
	})
	if r.AreaID == nil || *r.AreaID != fx.patioID {
		t.Fatal("area should resolve from its legacy name")
	}
}

func TestCreateFailsWhenCodeSpaceExhausted(t *testing.T) {
	fx := newFixture(t)
	fx.repo.codeBusy = true
	_, err := fx.svc.Create(context.Background(), CreateInput{
		FullName: "Mesa Sin Código", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID,
	})
	if !errors.Is(err, ErrCodeGenerationFailed) {
		t.Fatalf("err = %v, want ErrCodeGenerationFailed", err)
	}
	if len(fx.repo.rows) != 0 {
		t.Fatal("no reservation should be persisted when code generation fails")
	}
}

func TestUpdateCreditsOwnSeatsInSamePeriod(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Completa", People: 10, ReservationDate: afternoonAt(13), UnitID: fx.unitID, AreaID: fx.hallID})

	// The area is full, but shrinking the same reservation must succeed
	// because its own seats are credited back.
	updated, err := fx.svc.Update(context.Background(), r.ID, UpdateInput{People: intp(8)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.People != 8 {
		t.Fatalf("people = %d, want 8", updated.People)
	}

	// Growing past capacity still fails.
	if _, err := fx.svc.Update(context.Background(), r.ID, UpdateInput{People: intp(11)}); !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
}

func TestUpdateMoveGetsNoCreditInTargetArea(t *testing.T) {
	fx := newFixture(t)
	fx.create(t, CreateInput{FullName: "Patio Lleno", People: 4, ReservationDate: afternoonAt(13), UnitID: fx.unitID, AreaID: fx.patioID})
	r := fx.create(t, CreateInput{FullName: "Mesa Salón", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})

	_, err := fx.svc.Update(context.Background(), r.ID, UpdateInput{AreaID: &fx.patioID})
	if !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
}

func TestUpdateMovePeriodReleasesOldWindow(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Tarde", People: 10, ReservationDate: afternoonAt(13), UnitID: fx.unitID, AreaID: fx.hallID})

	// Night capacity is 8, so the party must shrink to move there.
	night := time.Date(2026, 9, 12, 21, 0, 0, 0, time.UTC)
	if _, err := fx.svc.Update(context.Background(), r.ID, UpdateInput{ReservationDate: &night}); !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
	if _, err := fx.svc.Update(context.Background(), r.ID, UpdateInput{ReservationDate: &night, People: intp(8)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// The afternoon window is free again.
	fx.create(t, CreateInput{FullName: "Mesa Nueva", People: 10, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})
}

func TestCheckInOnlyOnce(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Puntual", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})

	got, err := fx.svc.CheckIn(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if got.Status != StatusCheckedIn || got.CheckedInAt == nil {
		t.Fatal("check-in should set status and timestamp")
	}
	if _, err := fx.svc.CheckIn(context.Background(), r.ID); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
	}
	if fx.events.checkedIn != 1 {
		t.Fatalf("checkedIn events = %d, want 1", fx.events.checkedIn)
	}
}

func TestCheckInByTokenRejectsExpired(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Lenta", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})

	fx.svc.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	if _, err := fx.svc.CheckInByToken(context.Background(), r.QRToken); !errors.Is(err, ErrQRExpired) {
		t.Fatalf("err = %v, want ErrQRExpired", err)
	}

	fx.svc.now = time.Now
	if _, err := fx.svc.CheckInByToken(context.Background(), r.QRToken); err != nil {
		t.Fatalf("CheckInByToken: %v", err)
	}
}

func TestRenewQRRearmsReservation(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Renovada", People: 2, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})
	if _, err := fx.svc.CheckIn(context.Background(), r.ID); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	renewed, err := fx.svc.RenewQR(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("RenewQR: %v", err)
	}
	if renewed.QRToken == r.QRToken {
		t.Fatal("renewal should rotate the token")
	}
	if renewed.Status != StatusAwaitingCheckin || renewed.CheckedInAt != nil {
		t.Fatal("renewal should re-arm the reservation for check-in")
	}
}

func TestAddGuestRejectsDuplicateEmail(t *testing.T) {
	fx := newFixture(t)
	r := fx.create(t, CreateInput{FullName: "Mesa Social", People: 4, ReservationDate: afternoonAt(14), UnitID: fx.unitID, AreaID: fx.hallID})

	if _, err := fx.svc.AddGuest(context.Background(), r.ID, "Luis", "luis@example.com", GuestRoleHost); err != nil {
		t.Fatalf("AddGuest: %v", err)
	}
	if _, err := fx.svc.AddGuest(context.Background(), r.ID, "Luis Otra Vez", "LUIS@example.com", GuestRoleGuest); !errors.Is(err, ErrGuestEmailTaken) {
		t.Fatalf("err = %v, want ErrGuestEmailTaken", err)
	}
}

func TestConcurrentAdmissionsNeverOversell(t *testing.T) {
	fx := newFixture(t)

	const attempts = 30
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := fx.svc.Create(context.Background(), CreateInput{
				FullName:        "Mesa Concurrente",
				People:          1,
				ReservationDate: afternoonAt(12).Add(time.Duration(i) * time.Minute),
				UnitID:          fx.unitID,
				AreaID:          fx.hallID,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	admitted, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, ErrNoCapacity):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if admitted != 10 {
		t.Fatalf("admitted = %d, want exactly the afternoon capacity of 10", admitted)
	}
	if rejected != attempts-10 {
		t.Fatalf("rejected = %d, want %d", rejected, attempts-10)
	}

	used, err := fx.repo.UsedByArea(context.Background(), []string{fx.hallID}, afternoonAt(12), afternoonAt(17))
	if err != nil {
		t.Fatalf("UsedByArea: %v", err)
	}
	if used[fx.hallID] != 10 {
		t.Fatalf("persisted usage = %d, want 10", used[fx.hallID])
	}
}
