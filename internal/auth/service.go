// Package auth registers and signs in users and resolves session tokens into
// principals.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

const minPasswordLength = 6

type UserStore interface {
	UserFinder
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	users  UserStore
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewService(users UserStore, tokens *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Length(0, 100)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, 72)),
	)
}

// Session is a signed token and the user it was issued to.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an active account. The email must not be taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, &models.User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  hash,
	})
}

func (s *Service) create(ctx context.Context, user *models.User) (*models.User, error) {
	user.IsActive = true
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: user already exists with this email", domain.ErrConflict)
		}
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
		}
		return nil, err
	}
	if !CheckPassword(user.Password, password) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
	}
	return s.session(user)
}

// GoogleProfile is the subset of the Google userinfo response we use.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
}

// Google sign-in flows, carried in the OAuth state.
const (
	FlowLogin    = "login"
	FlowRegister = "register"
)

// LoginWithGoogle signs in, or with FlowRegister first creates, the account
// matching the Google profile's email.
func (s *Service) LoginWithGoogle(ctx context.Context, flow string, profile GoogleProfile) (*Session, error) {
	if err := validation.Validate(profile.Email, validation.Required, is.EmailFormat); err != nil {
		return nil, fmt.Errorf("%w: google profile has no usable email", domain.ErrValidation)
	}

	existing, err := s.users.FindByEmail(ctx, profile.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	switch flow {
	case FlowRegister:
		if existing != nil {
			return nil, fmt.Errorf("%w: user already exists with this email", domain.ErrConflict)
		}
		first, last := profile.GivenName, profile.FamilyName
		if first == "" {
			first, last, _ = strings.Cut(profile.Name, " ")
		}
		if first == "" {
			first = strings.Split(profile.Email, "@")[0]
		}
		user, err := s.create(ctx, &models.User{Email: profile.Email, FirstName: first, LastName: last})
		if err != nil {
			return nil, err
		}
		return s.session(user)
	default:
		if existing == nil {
			return nil, fmt.Errorf("%w: no account for this google user", domain.ErrNotFound)
		}
		if !existing.IsActive {
			return nil, fmt.Errorf("%w: account is not active", domain.ErrForbidden)
		}
		return s.session(existing)
	}
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}
