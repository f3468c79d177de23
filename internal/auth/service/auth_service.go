package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/AlibekovAA/blog-backend/internal/common/clock"
	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/blog-backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
	"github.com/AlibekovAA/blog-backend/internal/common/logger"
	"github.com/AlibekovAA/blog-backend/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/blog-backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/blog-backend/internal/user/repository"
)

type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

type AuthService struct {
	repo        userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	tokens      TokenIssuer
	clock       clock.Clock
	log         *logger.Logger

	dummyHash string
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	tokens TokenIssuer,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	s := &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		tokens:      tokens,
		clock:       clk,
		log:         log,
	}
	// Unknown emails still pay for one bcrypt comparison.
	if h, err := hasher.Hash("blog-backend-timing-equalizer"); err == nil {
		s.dummyHash = h
	}
	return s
}

type RegisterInput struct {
	Email     string
	Password  string
	FullName  string
	AvatarURL string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  userdomain.User
	Token string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "register_attempt",
	}).Info("register attempt")

	// bcrypt rejects passwords longer than 72 bytes.
	if len(input.Password) > constants.PasswordMaxLength {
		recordAttempt("register", "invalid")
		return AuthResult{}, commonerrors.ErrValidation.WithDetails(map[string]any{
			"fields": map[string]string{"password": "maxbytes=" + strconv.Itoa(constants.PasswordMaxLength)},
		})
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	user := userdomain.User{
		ID:           userdomain.ID(id),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		AvatarURL:    strings.TrimSpace(input.AvatarURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userdomain.ErrEmailTaken) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "register_email_exists",
			}).Warn("register failed: email already registered")
			recordAttempt("register", "conflict")
			return AuthResult{}, userdomain.ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		recordAttempt("register", "error")
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	token, err := s.issue(ctx, user, "register")
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   email,
		"user_id": string(user.ID),
		"action":  "register_success",
	}).Info("register success")
	recordAttempt("register", "success")

	return AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "login_attempt",
	}).Info("login attempt")

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			if s.dummyHash != "" {
				_ = s.hasher.Compare(s.dummyHash, input.Password)
			}
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "login_user_not_found",
			}).Warn("login failed: not found")
			recordAttempt("login", "invalid_credentials")
			return AuthResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		recordAttempt("login", "error")
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":   email,
			"user_id": string(user.ID),
			"action":  "login_invalid_password",
		}).Warn("login failed: invalid password")
		recordAttempt("login", "invalid_credentials")
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.issue(ctx, user, "login")
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   email,
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")
	recordAttempt("login", "success")

	return AuthResult{User: user, Token: token}, nil
}

// Me loads the profile of an authenticated subject. A valid token for a
// deleted account yields ErrUserNotFound.
func (s *AuthService) Me(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return userdomain.User{}, userdomain.ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(id),
			"action":  "me_fetch_failed",
		}).Errorf("me failed: %v", err)
		return userdomain.User{}, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user userdomain.User, operation string) (string, error) {
	token, err := s.tokens.Issue(string(user.ID))
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  operation + "_token_issue_failed",
		}).Errorf("%s failed: token issue error: %v", operation, err)
		recordAttempt(operation, "error")
		return "", commonerrors.ErrInternalError.WithCause(err)
	}
	return token, nil
}

func recordAttempt(operation, outcome string) {
	metrics.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}
