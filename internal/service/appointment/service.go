package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// Servicer covers booking operations.
type Servicer interface {
	Create(ctx context.Context, requesterExternalID string, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListForRequester(ctx context.Context, requesterExternalID string) ([]*model.Appointment, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*model.Appointment, error)
	ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error)
	Update(ctx context.Context, appointmentID string, patch *model.AppointmentPatch) (*model.Appointment, error)
	Delete(ctx context.Context, appointmentID string) error
}

type Service struct {
	users        repository.UserRepository
	businesses   repository.BusinessRepository
	appointments repository.AppointmentRepository
	outbox       repository.OutboxRepository
	logger       *zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	businesses repository.BusinessRepository,
	appointments repository.AppointmentRepository,
	outbox repository.OutboxRepository,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		users:        users,
		businesses:   businesses,
		appointments: appointments,
		outbox:       outbox,
		logger:       logger,
	}
}

// Create books an appointment for the requesting client. The business
// and service references are stored as given, without cross-checking
// that they exist or belong together, and no scheduling-conflict check
// is performed.
func (s *Service) Create(ctx context.Context, requesterExternalID string, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	user, err := s.users.GetByExternalAuthID(ctx, requesterExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("only clients can book appointments")
	}
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleClient {
		return nil, apperrors.Forbidden("only clients can book appointments")
	}

	apt := &model.Appointment{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		ClientID:   user.ID,
		Date:       req.Date,
		Status:     model.AppointmentStatusPendent,
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventAppointmentCreated, apt)
	return apt, nil
}

func (s *Service) ListForRequester(ctx context.Context, requesterExternalID string) ([]*model.Appointment, error) {
	user, err := s.users.GetByExternalAuthID(ctx, requesterExternalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return s.appointments.ListByClient(ctx, user.ID)
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*model.Appointment, error) {
	if _, err := s.businesses.Get(ctx, businessID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("business")
		}
		return nil, err
	}
	return s.appointments.ListByBusiness(ctx, businessID)
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error) {
	if _, err := s.users.Get(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}
	return s.appointments.ListByClient(ctx, clientID)
}

// Update overwrites the supplied fields without ownership checks and
// without validating status transitions.
func (s *Service) Update(ctx context.Context, appointmentID string, patch *model.AppointmentPatch) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment")
	}
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		apt.Status = *patch.Status
	}
	if patch.Date != nil {
		apt.Date = *patch.Date
	}

	if err := s.appointments.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, err
	}

	s.emit(ctx, model.EventAppointmentUpdated, apt)
	return apt, nil
}

func (s *Service) Delete(ctx context.Context, appointmentID string) error {
	if err := s.appointments.Delete(ctx, appointmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment")
		}
		return err
	}

	s.emit(ctx, model.EventAppointmentDeleted, map[string]interface{}{
		"id":         appointmentID,
		"deleted_at": time.Now().UTC(),
	})
	return nil
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
