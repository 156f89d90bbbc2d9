package business

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/gateway/storage"
	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// Stats labels. These differ from the statuses written at appointment
// creation ("pendent"/"completed"/"cancelled"), so freshly created
// appointments are invisible to the aggregation until their status is
// set to one of these values. Kept as-is; reconciling the vocabularies
// is an open product decision.
const (
	statsPendingLabel   = "pendente"
	statsConfirmedLabel = "confirmado"
)

// Servicer is the business domain service surface.
type Servicer interface {
	Create(ctx context.Context, requesterExternalID string, in CreateInput) (*model.Business, error)
	GetByID(ctx context.Context, idOrOwnerAuthID string) (*model.Business, error)
	ListAll(ctx context.Context) ([]*model.Business, error)
	Update(ctx context.Context, idOrOwnerAuthID string, in UpdateInput) (*model.Business, error)
	Delete(ctx context.Context, idOrOwnerAuthID string) error
	GetStats(ctx context.Context, idOrOwnerAuthID string) (*model.BusinessStats, error)
}

type Service struct {
	users        repository.UserRepository
	categories   repository.CategoryRepository
	businesses   repository.BusinessRepository
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	storage      storage.Gateway
	logger       *zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	categories repository.CategoryRepository,
	businesses repository.BusinessRepository,
	appointments repository.AppointmentRepository,
	outbox repository.OutboxRepository,
	storageGw storage.Gateway,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		users:        users,
		categories:   categories,
		businesses:   businesses,
		appointments: appointments,
		outbox:       outbox,
		storage:      storageGw,
		logger:       logger,
	}
}

// CreateInput carries the fields for creating a business. WorkingHours
// is the raw JSON form field, accepted in either input shape.
type CreateInput struct {
	Name         string
	Description  *string
	Address      *string
	Phone        *string
	CategoryID   string
	WorkingHours json.RawMessage
	Image        *model.ImageUpload
}

// UpdateInput carries the updatable fields. Nil fields are left
// untouched; supplied fields overwrite unconditionally.
type UpdateInput struct {
	Name         *string
	Description  *string
	Address      *string
	Phone        *string
	CategoryID   *string
	WorkingHours json.RawMessage
	Image        *model.ImageUpload
}

func (s *Service) Create(ctx context.Context, requesterExternalID string, in CreateInput) (*model.Business, error) {
	user, err := s.users.GetByExternalAuthID(ctx, requesterExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("only owners can create businesses")
	}
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleOwner {
		return nil, apperrors.Forbidden("only owners can create businesses")
	}

	if in.CategoryID == "" {
		return nil, apperrors.Validation("business category is required")
	}
	if _, err := s.categories.Get(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}

	hours, err := NormalizeWorkingHours(in.WorkingHours)
	if err != nil {
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

	business := &model.Business{
		Name:         in.Name,
		Description:  in.Description,
		Address:      in.Address,
		Phone:        in.Phone,
		ImageURL:     imageURL,
		WorkingHours: hours,
		OwnerID:      user.ID,
		CategoryID:   in.CategoryID,
	}

	if err := s.businesses.Create(ctx, business); err != nil {
		// Compensate the upload so a failed create leaves no orphan blob.
		s.deleteBlob(ctx, imageURL)
		return nil, err
	}

	s.emit(ctx, model.EventBusinessCreated, business)
	return business, nil
}

// GetByID resolves the identifier and loads the business with owner,
// category and services attached. A missing business is (nil, nil),
// not an error.
func (s *Service) GetByID(ctx context.Context, idOrOwnerAuthID string) (*model.Business, error) {
	id, err := s.resolveBusinessID(ctx, idOrOwnerAuthID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	business, err := s.businesses.GetPopulated(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return business, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.Business, error) {
	return s.businesses.ListPopulated(ctx)
}

func (s *Service) Update(ctx context.Context, idOrOwnerAuthID string, in UpdateInput) (*model.Business, error) {
	id, err := s.resolveBusinessID(ctx, idOrOwnerAuthID)
	if err != nil {
		return nil, err
	}

	business, err := s.businesses.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("business")
	}
	if err != nil {
		return nil, err
	}

	if in.Image != nil {
		// Best effort: a failed delete of the previous blob never
		// blocks the update.
		s.deleteBlob(ctx, business.ImageURL)

		url, err := s.storage.Upload(ctx, in.Image.Filename, in.Image.ContentType, in.Image.Data)
		if err != nil {
			return nil, err
		}
		business.ImageURL = &url
	}

	if in.Name != nil {
		business.Name = *in.Name
	}
	if in.Description != nil {
		business.Description = in.Description
	}
	if in.Address != nil {
		business.Address = in.Address
	}
	if in.Phone != nil {
		business.Phone = in.Phone
	}
	if in.CategoryID != nil {
		business.CategoryID = *in.CategoryID
	}
	if len(in.WorkingHours) > 0 {
		hours, err := NormalizeWorkingHours(in.WorkingHours)
		if err != nil {
			return nil, err
		}
		business.WorkingHours = hours
	}

	if err := s.businesses.Update(ctx, business); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("business")
		}
		return nil, err
	}

	s.emit(ctx, model.EventBusinessUpdated, business)
	return business, nil
}

func (s *Service) Delete(ctx context.Context, idOrOwnerAuthID string) error {
	id, err := s.resolveBusinessID(ctx, idOrOwnerAuthID)
	if err != nil {
		return err
	}

	business, err := s.businesses.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("business")
	}
	if err != nil {
		return err
	}

	s.deleteBlob(ctx, business.ImageURL)

	if err := s.businesses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("business")
		}
		return err
	}

	s.emit(ctx, model.EventBusinessDeleted, business)
	return nil
}

func (s *Service) GetStats(ctx context.Context, idOrOwnerAuthID string) (*model.BusinessStats, error) {
	id, err := s.resolveBusinessID(ctx, idOrOwnerAuthID)
	if err != nil {
		return nil, err
	}

	appointments, err := s.appointments.ListByBusinessWithPrice(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &model.BusinessStats{TotalAppointments: len(appointments)}
	clients := make(map[string]struct{})
	for _, apt := range appointments {
		clients[apt.ClientID] = struct{}{}
		switch apt.Status {
		case statsPendingLabel:
			stats.PendingAppointments++
		case statsConfirmedLabel:
			stats.CompletedAppointments++
			stats.ConfirmedRevenue += apt.ServicePrice
		}
	}
	stats.DistinctClients = len(clients)

	return stats, nil
}

// deleteBlob removes the blob behind imageURL, if any, logging and
// swallowing failures.
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
