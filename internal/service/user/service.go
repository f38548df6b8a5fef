package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"storefront/internal/domain"
	"storefront/internal/gateway/mail"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
)

// ErrInvalidCredentials is returned when login and password do not match.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)

const (
	verifyTTL = 24 * time.Hour
	resetTTL  = time.Hour
)

type mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service handles registration, email verification, login and password reset.
type Service struct {
	users       userrepo.Repository
	tokens      tokenrepo.Repository
	jwt         *TokenManager
	mailer      mailer
	baseURL     string
	passwordMin int
	now         func() time.Time
	logger      *log.Logger
}

func New(users userrepo.Repository, tokens tokenrepo.Repository, jwt *TokenManager, m mailer, baseURL string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		jwt:         jwt,
		mailer:      m,
		baseURL:     strings.TrimRight(baseURL, "/"),
		passwordMin: 8,
		now:         time.Now,
		logger:      logger,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a Pending user and emails a verification link. A failed
// email does not undo the registration; the link can be requested again.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", domain.ErrInvalidArgument)
	}
	if strings.Contains(username, "@") {
		return nil, fmt.Errorf("%w: username must not contain '@'", domain.ErrInvalidArgument)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleUser,
		Status:       domain.UserPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("user service: registered user_id=%s", u.ID)

	if err := s.sendVerification(ctx, *u); err != nil {
		s.logger.Printf("user service: verification mail user_id=%s error=%v", u.ID, err)
	}
	return u, nil
}

// Verify activates the account owning token. Expired tokens are discarded and
// the account stays Pending.
func (s *Service) Verify(ctx context.Context, token string) error {
	t, err := s.useToken(ctx, token, tokenrepo.KindVerify)
	if err != nil {
		return err
	}
	if err := s.users.SetStatus(ctx, t.UserID, domain.UserActive); err != nil {
		return err
	}
	if err := s.tokens.DeleteForUser(ctx, t.UserID, tokenrepo.KindVerify); err != nil {
		s.logger.Printf("user service: drop verify tokens user_id=%s error=%v", t.UserID, err)
	}
	s.logger.Printf("user service: verified user_id=%s", t.UserID)
	return nil
}

// Login accepts a username or an email and returns a signed access token.
// Identifiers containing '@' are looked up as emails only.
func (s *Service) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	login = strings.TrimSpace(login)
	password = strings.TrimSpace(password)
	if login == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}
	var (
		u   *domain.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.users.GetByEmail(ctx, login)
	} else {
		u, err = s.users.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return "", nil, fmt.Errorf("%w: email not verified", domain.ErrForbidden)
	}
	token, _, err := s.jwt.Issue(*u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// RequestPasswordReset emails a one-hour reset link. Unknown emails and mail
// failures both succeed silently so the response does not reveal which
// addresses are registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.lookupEmail(ctx, email)
	if err != nil || u == nil {
		return err
	}
	if err := s.tokens.DeleteForUser(ctx, u.ID, tokenrepo.KindReset); err != nil {
		return err
	}
	token, err := s.issue(ctx, u.ID, tokenrepo.KindReset, resetTTL)
	if err != nil {
		return err
	}
	msg := mail.PasswordResetMessage(u.Username, s.link("/users/reset-password", token))
	if err := s.mailer.Send(ctx, u.Email, msg.Subject, msg.Body); err != nil {
		s.logger.Printf("user service: reset mail user_id=%s error=%v", u.ID, err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if err := validatePassword(newPassword, s.passwordMin); err != nil {
		return err
	}
	t, err := s.useToken(ctx, token, tokenrepo.KindReset)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, t.UserID, string(hashed)); err != nil {
		return err
	}
	if err := s.tokens.DeleteForUser(ctx, t.UserID, tokenrepo.KindReset); err != nil {
		s.logger.Printf("user service: drop reset tokens user_id=%s error=%v", t.UserID, err)
	}
	s.logger.Printf("user service: password reset user_id=%s", t.UserID)
	return nil
}

// ResendVerification replaces any outstanding verification link of a Pending
// account. Unknown or already active accounts and mail failures succeed
// silently.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.lookupEmail(ctx, email)
	if err != nil || u == nil || u.IsActive() {
		return err
	}
	if err := s.tokens.DeleteForUser(ctx, u.ID, tokenrepo.KindVerify); err != nil {
		return err
	}
	if err := s.sendVerification(ctx, *u); err != nil {
		s.logger.Printf("user service: verification mail user_id=%s error=%v", u.ID, err)
	}
	return nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) sendVerification(ctx context.Context, u domain.User) error {
	token, err := s.issue(ctx, u.ID, tokenrepo.KindVerify, verifyTTL)
	if err != nil {
		return err
	}
	msg := mail.VerificationMessage(u.Username, s.link("/users/verify", token))
	return s.mailer.Send(ctx, u.Email, msg.Subject, msg.Body)
}

func (s *Service) issue(ctx context.Context, userID string, kind tokenrepo.Kind, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	err := s.tokens.Create(ctx, tokenrepo.Token{
		Token:     token,
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// useToken consumes a one-time token. Unknown or already used tokens are
// invalid arguments; expired ones are gone afterwards and reported as
// ErrTokenExpired.
func (s *Service) useToken(ctx context.Context, token string, kind tokenrepo.Kind) (*tokenrepo.Token, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token required", domain.ErrInvalidArgument)
	}
	t, err := s.tokens.Consume(ctx, token, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid %s token", domain.ErrInvalidArgument, kind)
		}
		return nil, err
	}
	if t.Expired(s.now()) {
		return nil, fmt.Errorf("%w: %s token", domain.ErrTokenExpired, kind)
	}
	return t, nil
}

func (s *Service) lookupEmail(ctx context.Context, email string) (*domain.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) link(path, token string) string {
	return s.baseURL + path + "?token=" + url.QueryEscape(token)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email required", domain.ErrInvalidArgument)
	}
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", domain.ErrInvalidArgument, raw)
	}
	return email, nil
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidArgument, min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", domain.ErrInvalidArgument)
	}
	return nil
}
