package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/repository"
	"github.com/iliyamo/event-reservation-api/internal/utils"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *model.User
}

// AuthService registers users and issues, validates and revokes bearer
// tokens.  Each token is a signed JWT whose jti is recorded in the token
// store; a token stays valid only while that record exists.
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	secret     string
	ttlMin     int
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(users UserStore, tokens TokenStore, secret string, ttlMin, bcryptCost int, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, secret: secret, ttlMin: ttlMin, bcryptCost: bcryptCost, log: log}
}

// Register creates a user with the default role and logs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	fields := FieldErrors{}
	if err := merge(fields, validateStruct(in)); err != nil {
		return nil, err
	}
	if len(fields["email"]) == 0 {
		taken, err := s.users.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, Internal("Error while registering", err)
		}
		if taken {
			fields.Add("email", "The email has already been taken.")
		}
	}
	if len(fields) > 0 {
		return nil, Validation("The given data was invalid.", fields)
	}

	u := &model.User{Name: in.Name, Email: in.Email, Phone: in.Phone, Role: model.RoleUser}
	if err := s.users.Create(ctx, u, in.Password, s.bcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, Validation("The given data was invalid.", FieldErrors{"email": {"The email has already been taken."}})
		}
		return nil, Internal("Error while registering", err)
	}
	return s.issue(ctx, u)
}

// Login checks the credentials and issues a fresh token.  Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, badCredentials()
		}
		return nil, Internal("Error while logging in", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, badCredentials()
	}
	return s.issue(ctx, u)
}

// Logout revokes the token used for the current request only.
func (s *AuthService) Logout(ctx context.Context, id Identity) error {
	if err := RequireRole(id); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, id.TokenID); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return Unauthorized("Unauthenticated.")
		}
		return Internal("Error while logging out", err)
	}
	return nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, id Identity) (*model.User, error) {
	if err := RequireRole(id); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, Unauthorized("Unauthenticated.")
		}
		return nil, Internal("Error while retrieving the profile", err)
	}
	return u, nil
}

// Authenticate turns a raw bearer token into an Identity.  The JWT must
// verify and its jti must still be recorded for the same user; the role
// is read from the user record so a role change applies immediately.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Identity, error) {
	claims, err := utils.ParseAccessToken(s.secret, raw)
	if err != nil {
		return Identity{}, Unauthorized("Unauthenticated.")
	}
	userID, err := s.tokens.Validate(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return Identity{}, Unauthorized("Unauthenticated.")
		}
		return Identity{}, Internal("Error while validating the token", err)
	}
	if userID != claims.Subject {
		return Identity{}, Unauthorized("Unauthenticated.")
	}
	// the role claim is informational; the stored role decides access
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Identity{}, Unauthorized("Unauthenticated.")
		}
		return Identity{}, Internal("Error while validating the token", err)
	}
	return Identity{UserID: u.ID, Role: u.Role, TokenID: claims.ID}, nil
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*AuthResult, error) {
	tok, err := utils.NewAccessToken(s.secret, u.ID, u.Role, uuid.NewString(), s.ttlMin)
	if err != nil {
		return nil, Internal("Error while issuing the token", err)
	}
	if err := s.tokens.Store(ctx, tok.ID, u.ID, tok.Exp); err != nil {
		return nil, Internal("Error while issuing the token", err)
	}
	s.log.Info("token issued", zap.String("user_id", u.ID), zap.String("jti", tok.ID))
	return &AuthResult{AccessToken: tok.Token, TokenType: "Bearer", ExpiresAt: tok.Exp, User: u}, nil
}

func badCredentials() *Error { return Unauthorized("The provided credentials are incorrect.") }
