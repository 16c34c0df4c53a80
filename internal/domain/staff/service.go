package staff

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Service struct {
	repo Repository
	cfg  Config
	now  func() time.Time
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Service{repo: repo, cfg: cfg, now: time.Now}
}

// Claims is what middleware gets back from a verified bearer token.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*Member, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	role := input.Role
	if role == "" {
		role = RoleStaff
	}
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	m := &Member{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Login verifies the password and issues a signed bearer token. Disabled
// accounts fail the same way bad passwords do, no account probing.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Member, error) {
	m, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !m.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(m)
	if err != nil {
		return "", nil, err
	}

	// Best effort, a failed stamp must not fail the login.
	now := s.now()
	m.LastLoginAt = &now
	_ = s.repo.Update(ctx, m)

	return token, m, nil
}

func (s *Service) issueToken(m *Member) (string, error) {
	now := s.now()
	claims := Claims{
		Role: m.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   m.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// ParseToken verifies signature and expiry and returns the claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}

func (s *Service) SetRole(ctx context.Context, id string, role Role) (*Member, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Role = role
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.IsActive = active
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = string(hash)
	return s.repo.Update(ctx, m)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
