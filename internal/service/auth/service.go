package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/gateway/identity"
	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// Servicer covers registration and sign-in flows. Credentials live at
// the identity provider; the local User record only mirrors profile
// data keyed by the provider's external id.
type Servicer interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	GoogleLogin(ctx context.Context, req *model.GoogleLoginRequest) (*model.Session, error)
	Me(ctx context.Context, externalAuthID string) (*model.User, error)
}

type Service struct {
	users    repository.UserRepository
	identity identity.Gateway
	logger   *zerolog.Logger
}

func NewService(users repository.UserRepository, identityGw identity.Gateway, logger *zerolog.Logger) *Service {
	return &Service{users: users, identity: identityGw, logger: logger}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	externalID, err := s.identity.CreateIdentity(ctx, req.Email, req.Password, req.Name)
	if errors.Is(err, identity.ErrEmailExists) {
		return nil, apperrors.Conflict("email already registered")
	}
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ExternalAuthID: externalID,
		Email:          req.Email,
		Name:           req.Name,
		Role:           req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("user already registered")
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	session, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByExternalAuthID(ctx, session.ExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &model.Session{
		IDToken:        session.IDToken,
		ExternalAuthID: session.ExternalID,
		User:           user,
	}, nil
}

// GoogleLogin verifies a provider-issued token and signs the caller in,
// creating the local User record on first login.
func (s *Service) GoogleLogin(ctx context.Context, req *model.GoogleLoginRequest) (*model.Session, error) {
	claims, err := s.identity.VerifyToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if req.ExternalUID != "" && req.ExternalUID != claims.ExternalID {
		return nil, apperrors.Unauthenticated("token subject mismatch", nil)
	}

	user, err := s.users.GetByExternalAuthID(ctx, claims.ExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		role := req.Role
		if role == "" {
			role = model.RoleClient
		}
		email := req.Email
		if email == "" {
			email = claims.Email
		}
		name := req.Name
		if name == "" {
			name = claims.Name
		}

		user = &model.User{
			ExternalAuthID: claims.ExternalID,
			Email:          email,
			Name:           name,
			ImageURL:       req.ImageURL,
			Role:           role,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return &model.Session{
		IDToken:        req.IDToken,
		ExternalAuthID: claims.ExternalID,
		User:           user,
	}, nil
}

func (s *Service) Me(ctx context.Context, externalAuthID string) (*model.User, error) {
	user, err := s.users.GetByExternalAuthID(ctx, externalAuthID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
