package staff

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStaffRepo struct {
	byID    map[string]*Member
	byEmail map[string]*Member
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{byID: make(map[string]*Member), byEmail: make(map[string]*Member)}
}

func (f *fakeStaffRepo) Create(ctx context.Context, m *Member) error {
	cp := *m
	f.byID[m.ID] = &cp
	f.byEmail[m.Email] = &cp
	return nil
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (*Member, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStaffRepo) GetByEmail(ctx context.Context, email string) (*Member, error) {
	m, ok := f.byEmail[email]
	if !ok {
		return nil, ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStaffRepo) List(ctx context.Context) ([]Member, error) {
	var out []Member
	for _, m := range f.byID {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStaffRepo) Update(ctx context.Context, m *Member) error {
	if _, ok := f.byID[m.ID]; !ok {
		return ErrMemberNotFound
	}
	cp := *m
	f.byID[m.ID] = &cp
	f.byEmail[m.Email] = &cp
	return nil
}

func (f *fakeStaffRepo) Delete(ctx context.Context, id string) error {
	m, ok := f.byID[id]
	if !ok {
		return ErrMemberNotFound
	}
	delete(f.byEmail, m.Email)
	delete(f.byID, id)
	return nil
}

func newTestService() (*Service, *fakeStaffRepo) {
	repo := newFakeStaffRepo()
	return NewService(repo, Config{JWTSecret: "test-secret", TokenTTL: time.Hour}), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, err := svc.Register(ctx, RegisterInput{Name: "Marta", Email: " Marta@Example.com ", Password: "correcthorse", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if m.Email != "marta@example.com" {
		t.Fatalf("email should normalize, got %q", m.Email)
	}
	if m.PasswordHash == "correcthorse" {
		t.Fatal("password must be hashed")
	}

	token, logged, err := svc.Login(ctx, "marta@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != m.ID {
		t.Fatal("login should return the registered member")
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != m.ID || claims.Role != RoleAdmin {
		t.Fatalf("claims = subject %q role %q, want %q/%q", claims.Subject, claims.Role, m.ID, RoleAdmin)
	}
}

func TestLoginRejectsBadPasswordAndUnknownEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "Marta", Email: "marta@example.com", Password: "correcthorse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "marta@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "correcthorse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginRejectsDeactivatedMember(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, err := svc.Register(ctx, RegisterInput{Name: "Marta", Email: "marta@example.com", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.SetActive(ctx, m.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, _, err := svc.Login(ctx, "marta@example.com", "correcthorse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "longenough", Role: "OWNER"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "Y", Email: "X@example.com", Password: "longenough"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestParseTokenRejectsExpiredAndTampered(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "Marta", Email: "marta@example.com", Password: "correcthorse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := svc.Login(ctx, "marta@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.ParseToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for expired token", err)
	}

	other := NewService(newFakeStaffRepo(), Config{JWTSecret: "another-secret", TokenTTL: time.Hour})
	token, _, err := svc.Login(ctx, "marta@example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for wrong signing key", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, err := svc.Register(ctx, RegisterInput{Name: "Marta", Email: "marta@example.com", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(ctx, m.ID, "wrong", "newpassword1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, m.ID, "correcthorse", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := svc.Login(ctx, "marta@example.com", "newpassword1"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
}
