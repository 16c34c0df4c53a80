package unit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateUnitInput struct {
	Name string
	Slug string
}

type UpdateUnitInput struct {
	Name     *string
	IsActive *bool
}

type CreateAreaInput struct {
	Name              string
	CapacityAfternoon *int
	CapacityNight     *int
	Photo             string
	Description       string
	Icon              string
}

type UpdateAreaInput struct {
	Name              *string
	CapacityAfternoon *int
	CapacityNight     *int
	IsActive          *bool
	Photo             *string
	Description       *string
	Icon              *string
}

func (s *Service) CreateUnit(ctx context.Context, input CreateUnitInput) (*Unit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("could not derive a slug from %q", name)
	}

	taken, err := s.repo.IsSlugTaken(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	u := Unit{
		ID:       uuid.New().String(),
		Name:     name,
		Slug:     slug,
		IsActive: true,
	}
	if err := s.repo.CreateUnit(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetUnit(ctx context.Context, id string) (*Unit, error) {
	return s.repo.GetUnitByID(ctx, id)
}

func (s *Service) ListUnits(ctx context.Context) ([]Unit, error) {
	return s.repo.ListUnits(ctx)
}

func (s *Service) UpdateUnit(ctx context.Context, id string, input UpdateUnitInput) (*Unit, error) {
	u, err := s.repo.GetUnitByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		u.Name = name
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}

	if err := s.repo.UpdateUnit(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUnit refuses to remove a unit that reservations still reference.
func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetUnitByID(ctx, id); err != nil {
			return err
		}
		count, err := tx.CountUnitReservations(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUnitHasReservations
		}
		return tx.DeleteUnit(ctx, id)
	})
}

func (s *Service) CreateArea(ctx context.Context, unitID string, input CreateAreaInput) (*Area, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := validateCapacity(input.CapacityAfternoon); err != nil {
		return nil, err
	}
	if err := validateCapacity(input.CapacityNight); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUnitByID(ctx, unitID); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindAreaByName(ctx, unitID, name); err == nil && existing != nil {
		return nil, ErrAreaNameTaken
	} else if err != nil && !errors.Is(err, ErrAreaNotFound) {
		return nil, err
	}

	a := Area{
		ID:                uuid.New().String(),
		UnitID:            unitID,
		Name:              name,
		CapacityAfternoon: input.CapacityAfternoon,
		CapacityNight:     input.CapacityNight,
		IsActive:          true,
		Photo:             input.Photo,
		Description:       input.Description,
		Icon:              input.Icon,
	}
	if err := s.repo.CreateArea(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) GetArea(ctx context.Context, id string) (*Area, error) {
	return s.repo.GetAreaByID(ctx, id)
}

func (s *Service) ListAreas(ctx context.Context, unitID string) ([]Area, error) {
	if _, err := s.repo.GetUnitByID(ctx, unitID); err != nil {
		return nil, err
	}
	return s.repo.ListAreas(ctx, unitID)
}

// ListAreasByIDs returns the unit's areas restricted to ids. Unknown ids are
// silently dropped rather than failing the whole lookup.
func (s *Service) ListAreasByIDs(ctx context.Context, unitID string, ids []string) ([]Area, error) {
	if len(ids) == 0 {
		return s.repo.ListAreas(ctx, unitID)
	}
	return s.repo.ListAreasByIDs(ctx, unitID, ids)
}

func (s *Service) UpdateArea(ctx context.Context, id string, input UpdateAreaInput) (*Area, error) {
	a, err := s.repo.GetAreaByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		if !strings.EqualFold(name, a.Name) {
			if existing, err := s.repo.FindAreaByName(ctx, a.UnitID, name); err == nil && existing != nil && existing.ID != a.ID {
				return nil, ErrAreaNameTaken
			} else if err != nil && !errors.Is(err, ErrAreaNotFound) {
				return nil, err
			}
		}
		a.Name = name
	}
	if input.CapacityAfternoon != nil {
		if err := validateCapacity(input.CapacityAfternoon); err != nil {
			return nil, err
		}
		a.CapacityAfternoon = input.CapacityAfternoon
	}
	if input.CapacityNight != nil {
		if err := validateCapacity(input.CapacityNight); err != nil {
			return nil, err
		}
		a.CapacityNight = input.CapacityNight
	}
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}
	if input.Photo != nil {
		a.Photo = *input.Photo
	}
	if input.Description != nil {
		a.Description = *input.Description
	}
	if input.Icon != nil {
		a.Icon = *input.Icon
	}

	if err := s.repo.UpdateArea(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteArea(ctx context.Context, id string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetAreaByID(ctx, id); err != nil {
			return err
		}
		count, err := tx.CountAreaReservations(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAreaHasReservations
		}
		return tx.DeleteArea(ctx, id)
	})
}

// ResolveUnit prefers an ID lookup and falls back to the bounded,
// database-side name search for legacy free-text payloads. Inactive units
// resolve as not found.
func (s *Service) ResolveUnit(ctx context.Context, id, name string) (*Unit, error) {
	var (
		u   *Unit
		err error
	)
	switch {
	case id != "":
		u, err = s.repo.GetUnitByID(ctx, id)
	case strings.TrimSpace(name) != "":
		u, err = s.repo.FindUnitByName(ctx, strings.TrimSpace(name))
	default:
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUnitNotFound
	}
	return u, nil
}

// ResolveArea resolves an area within an already-resolved unit, by ID or by
// name. Areas outside the unit or inactive resolve as not found.
func (s *Service) ResolveArea(ctx context.Context, u *Unit, id, name string) (*Area, error) {
	var (
		a   *Area
		err error
	)
	switch {
	case id != "":
		a, err = s.repo.GetAreaByID(ctx, id)
	case strings.TrimSpace(name) != "":
		a, err = s.repo.FindAreaByName(ctx, u.ID, strings.TrimSpace(name))
	default:
		return nil, ErrAreaNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.UnitID != u.ID || !a.IsActive {
		return nil, ErrAreaNotFound
	}
	return a, nil
}

// Slugify lowercases the name and collapses everything that is not a letter
// or digit into single dashes.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func validateCapacity(v *int) error {
	if v != nil && *v < 0 {
		return ErrInvalidCapacity
	}
	return nil
}
