package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/gateway/storage"
	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// Servicer covers operations on the services a business offers.
type Servicer interface {
	Create(ctx context.Context, requesterExternalID string, in CreateInput) (*model.Service, error)
	Get(ctx context.Context, serviceID string) (*model.Service, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*model.Service, error)
	Update(ctx context.Context, requesterExternalID, serviceID string, in UpdateInput) (*model.Service, error)
	Delete(ctx context.Context, requesterExternalID, serviceID string) error
}

type Service struct {
	users      repository.UserRepository
	businesses repository.BusinessRepository
	services   repository.ServiceRepository
	outbox     repository.OutboxRepository
	storage    storage.Gateway
	logger     *zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	businesses repository.BusinessRepository,
	services repository.ServiceRepository,
	outbox repository.OutboxRepository,
	storageGw storage.Gateway,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		users:      users,
		businesses: businesses,
		services:   services,
		outbox:     outbox,
		storage:    storageGw,
		logger:     logger,
	}
}

type CreateInput struct {
	BusinessID      string
	Name            string
	Description     *string
	DurationMinutes int
	Price           float64
	Image           *model.ImageUpload
}

// UpdateInput leaves nil fields untouched. Numeric fields are pointers
// so that an absent value is distinguishable from an explicit zero.
type UpdateInput struct {
	Name            *string
	Description     *string
	DurationMinutes *int
	Price           *float64
	Image           *model.ImageUpload
}

// verifyOwnership checks that the requester resolves to an owner User
// who owns the given business. Returns the business on success.
func (s *Service) verifyOwnership(ctx context.Context, requesterExternalID, businessID string) (*model.Business, error) {
	user, err := s.users.GetByExternalAuthID(ctx, requesterExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("only business owners can manage services")
	}
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleOwner {
		return nil, apperrors.Forbidden("only business owners can manage services")
	}

	business, err := s.businesses.Get(ctx, businessID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("business")
	}
	if err != nil {
		return nil, err
	}
	if business.OwnerID != user.ID {
		return nil, apperrors.Forbidden("business does not belong to requester")
	}
	return business, nil
}

func (s *Service) Create(ctx context.Context, requesterExternalID string, in CreateInput) (*model.Service, error) {
	if _, err := s.verifyOwnership(ctx, requesterExternalID, in.BusinessID); err != nil {
		return nil, err
	}

	var imageURL *string
	if in.Image != nil {
		url, err := s.storage.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Data)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	svc := &model.Service{
		BusinessID:      in.BusinessID,
		Name:            in.Name,
		Description:     in.Description,
		ImageURL:        imageURL,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
	}

	if err := s.services.Create(ctx, svc); err != nil {
		s.deleteBlob(ctx, imageURL)
		return nil, err
	}

	s.emit(ctx, model.EventServiceCreated, svc)
	return svc, nil
}

func (s *Service) Get(ctx context.Context, serviceID string) (*model.Service, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("service")
	}
	if err != nil {
		return nil, err
	}

	business, err := s.businesses.Get(ctx, svc.BusinessID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	svc.Business = business

	return svc, nil
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*model.Service, error) {
	return s.services.ListByBusiness(ctx, businessID)
}

func (s *Service) Update(ctx context.Context, requesterExternalID, serviceID string, in UpdateInput) (*model.Service, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("service")
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.verifyOwnership(ctx, requesterExternalID, svc.BusinessID); err != nil {
		return nil, err
	}

	if in.Image != nil {
		s.deleteBlob(ctx, svc.ImageURL)

		url, err := s.storage.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Data)
		if err != nil {
			return nil, err
		}
		svc.ImageURL = &url
	}

	if in.Name != nil {
		svc.Name = *in.Name
	}
	if in.Description != nil {
		svc.Description = in.Description
	}
	if in.DurationMinutes != nil {
		svc.DurationMinutes = *in.DurationMinutes
	}
	if in.Price != nil {
		svc.Price = *in.Price
	}

	if err := s.services.Update(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service")
		}
		return nil, err
	}

	s.emit(ctx, model.EventServiceUpdated, svc)
	return svc, nil
}

func (s *Service) Delete(ctx context.Context, requesterExternalID, serviceID string) error {
	svc, err := s.services.Get(ctx, serviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("service")
	}
	if err != nil {
		return err
	}

	if _, err := s.verifyOwnership(ctx, requesterExternalID, svc.BusinessID); err != nil {
		return err
	}

	s.deleteBlob(ctx, svc.ImageURL)

	if err := s.services.Delete(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("service")
		}
		return err
	}

	s.emit(ctx, model.EventServiceDeleted, svc)
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

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	event, err := model.NewOutboxEvent(eventType, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build outbox event")
		return
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to enqueue outbox event")
	}
}
