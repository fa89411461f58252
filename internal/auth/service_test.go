package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncuphq/syncup-backend/internal/users"
	pkgAuth "github.com/syncuphq/syncup-backend/pkg/auth"
	"github.com/syncuphq/syncup-backend/pkg/auth/session"
	"github.com/syncuphq/syncup-backend/pkg/config"
	"github.com/syncuphq/syncup-backend/pkg/db/models"
	pkgerrors "github.com/syncuphq/syncup-backend/pkg/errors"
	"github.com/syncuphq/syncup-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "syncup-test",
	ExpirationMinutes: 15,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserRepo struct {
	user      *models.User
	created   []users.CreateUserDTO
	createErr error
	lastLogin int
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	return &models.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		IsActive:     true,
	}, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	s.lastLogin++
	return nil
}

type stubSessions struct {
	generated  []string
	revoked    []string
	rotateErr  error
	refreshTok string
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if provided != s.refreshTok {
		return "", "", session.ErrInvalidRefreshToken
	}
	newID := session.NewAccessID()
	return newID, "refresh-" + newID, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newAuthService(t *testing.T, repo *stubUserRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		PasswordConfig: testPasswordConfig,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterCreatesUserAndIssuesTokens(t *testing.T) {
	repo := &stubUserRepo{}
	sessions := &stubSessions{}
	svc := newAuthService(t, repo, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "  Casey@Example.COM ",
		Password:  "sup3r-secret",
		FirstName: "Casey",
		LastName:  "Reyes",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	if repo.created[0].Email != "casey@example.com" {
		t.Errorf("email = %s, want normalized lowercase", repo.created[0].Email)
	}
	if repo.created[0].PasswordHash == "sup3r-secret" || repo.created[0].PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected token pair")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("sessions generated = %d, want 1", len(sessions.generated))
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Email != "casey@example.com" {
		t.Errorf("claims email = %s", claims.Email)
	}
	if claims.ID != sessions.generated[0] {
		t.Errorf("jti = %s, want session access id %s", claims.ID, sessions.generated[0])
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newAuthService(t, &stubUserRepo{}, &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "casey@example.com",
		Password:  "short",
		FirstName: "Casey",
		LastName:  "Reyes",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	hash, err := security.HashPassword("sup3r-secret", testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	repo := &stubUserRepo{user: &models.User{
		ID:           uuid.New(),
		Email:        "casey@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}}
	sessions := &stubSessions{}
	svc := newAuthService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Casey@Example.com",
		Password: "sup3r-secret",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected token pair")
	}
	if repo.lastLogin != 1 {
		t.Errorf("last login updates = %d, want 1", repo.lastLogin)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("sup3r-secret", testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	repo := &stubUserRepo{user: &models.User{
		Email:        "casey@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}}
	svc := newAuthService(t, repo, &stubSessions{})

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "casey@example.com",
		Password: "wrong",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), invalidCredentialsMessage) {
		t.Errorf("error must not leak detail: %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newAuthService(t, &stubUserRepo{}, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	hash, err := security.HashPassword("sup3r-secret", testPasswordConfig)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	repo := &stubUserRepo{user: &models.User{
		Email:        "casey@example.com",
		PasswordHash: hash,
		IsActive:     false,
	}}
	svc := newAuthService(t, repo, &stubSessions{})

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "casey@example.com",
		Password: "sup3r-secret",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	userID := uuid.New()
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "casey@example.com",
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	sessions := &stubSessions{refreshTok: "refresh-current"}
	svc := newAuthService(t, &stubUserRepo{}, sessions)

	resp, err := svc.Refresh(context.Background(), accessToken, "refresh-current")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected rotated token pair")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.ID == accessID {
		t.Error("jti must rotate")
	}
}

func TestRefreshRejectsBadRefreshToken(t *testing.T) {
	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	sessions := &stubSessions{refreshTok: "refresh-current"}
	svc := newAuthService(t, &stubUserRepo{}, sessions)

	_, err = svc.Refresh(context.Background(), accessToken, "stolen")
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := newAuthService(t, &stubUserRepo{}, sessions)

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("revoked = %v, want [access-1]", sessions.revoked)
	}
}
