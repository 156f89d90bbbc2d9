package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id string) (*model.User, error)
		GetByExternalAuthID(ctx context.Context, externalAuthID string) (*model.User, error)
		List(ctx context.Context) ([]*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id string) error
	}

	CategoryRepository interface {
		Create(ctx context.Context, category *model.Category) error
		Get(ctx context.Context, id string) (*model.Category, error)
		GetByName(ctx context.Context, name string) (*model.Category, error)
		List(ctx context.Context) ([]*model.Category, error)
		Update(ctx context.Context, category *model.Category) error
		Delete(ctx context.Context, id string) error
	}

	BusinessRepository interface {
		Create(ctx context.Context, business *model.Business) error
		Get(ctx context.Context, id string) (*model.Business, error)
		// GetPopulated loads the business with owner, category and
		// services attached. Returns ErrNotFound when absent.
		GetPopulated(ctx context.Context, id string) (*model.Business, error)
		ListPopulated(ctx context.Context) ([]*model.Business, error)
		FindFirstByOwner(ctx context.Context, ownerID string) (*model.Business, error)
		Update(ctx context.Context, business *model.Business) error
		Delete(ctx context.Context, id string) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id string) (*model.Service, error)
		ListByBusiness(ctx context.Context, businessID string) ([]*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id string) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id string) (*model.Appointment, error)
		ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error)
		ListByBusiness(ctx context.Context, businessID string) ([]*model.Appointment, error)
		// ListByBusinessWithPrice joins each appointment with its
		// service price for stats aggregation.
		ListByBusinessWithPrice(ctx context.Context, businessID string) ([]*model.AppointmentWithPrice, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id string) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		IncrementRetry(ctx context.Context, id uuid.UUID) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
