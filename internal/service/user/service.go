package user

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/gateway/storage"
	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// Servicer covers user account operations.
type Servicer interface {
	UpdateProfile(ctx context.Context, requesterExternalID string, in ProfileInput) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type Service struct {
	users   repository.UserRepository
	storage storage.Gateway
	logger  *zerolog.Logger
}

func NewService(users repository.UserRepository, storageGw storage.Gateway, logger *zerolog.Logger) *Service {
	return &Service{users: users, storage: storageGw, logger: logger}
}

type ProfileInput struct {
	Name  *string
	Role  *string
	Image *model.ImageUpload
}

// UpdateProfile updates the record belonging to the authenticated
// caller, looked up by external auth id.
func (s *Service) UpdateProfile(ctx context.Context, requesterExternalID string, in ProfileInput) (*model.User, error) {
	user, err := s.users.GetByExternalAuthID(ctx, requesterExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	if in.Image != nil {
		s.deleteBlob(ctx, user.ImageURL)

		url, err := s.storage.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Data)
		if err != nil {
			return nil, err
		}
		user.ImageURL = &url
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		user.Role = *in.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user")
		}
		return err
	}
	return nil
}

func (s *Service) deleteBlob(ctx context.Context, imageURL *string) {
	if imageURL == nil {
		return
	}
	blobID := storage.BlobIDFromURL(*imageURL)
	if blobID == "" {
		return
	}
	if err := s.storage.Delete(ctx, blobID); err != nil {
		s.logger.Warn().Err(err).Str("blob_id", blobID).Msg("failed to delete image blob")
	}
}
