package appointment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository/memory"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

type fixture struct {
	service      *Service
	users        *memory.UserRepository
	businesses   *memory.BusinessRepository
	appointments *memory.AppointmentRepository
	outbox       *memory.OutboxRepository

	client *model.User
	owner  *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		users:        memory.NewUserRepository(),
		businesses:   memory.NewBusinessRepository(),
		appointments: memory.NewAppointmentRepository(),
		outbox:       memory.NewOutboxRepository(),
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	f.service = NewService(f.users, f.businesses, f.appointments, f.outbox, &logger)

	f.client = &model.User{ExternalAuthID: "cLiEnTaUtHiDxYz1234567890", Email: "c@x.dev", Name: "Client", Role: model.RoleClient}
	require.NoError(t, f.users.Create(ctx, f.client))

	f.owner = &model.User{ExternalAuthID: "oWnErAuThIdAbCdEfGhIjKlMn", Email: "o@x.dev", Name: "Owner", Role: model.RoleOwner}
	require.NoError(t, f.users.Create(ctx, f.owner))

	return f
}

func bookingRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		BusinessID: "5f1a2b3c4d5e6f7a8b9c0d1e",
		ServiceID:  "6a2b3c4d5e6f7a8b9c0d1e2f",
		Date:       time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC),
	}
}

func TestCreateAppointmentStatusIsPendent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	apt, err := f.service.Create(ctx, f.client.ExternalAuthID, bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPendent, apt.Status)
	assert.Equal(t, f.client.ID, apt.ClientID)

	require.Len(t, f.outbox.Events, 1)
	assert.Equal(t, model.EventAppointmentCreated, f.outbox.Events[0].EventType)
}

func TestCreateAppointmentNonClientForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Create(ctx, f.owner.ExternalAuthID, bookingRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	listed, listErr := f.appointments.ListByBusiness(ctx, "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.NoError(t, listErr)
	assert.Empty(t, listed, "rejected booking creates no record")
}

func TestCreateAppointmentNoExistenceChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Neither the business nor the service exist anywhere; booking
	// still succeeds.
	apt, err := f.service.Create(ctx, f.client.ExternalAuthID, bookingRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, apt.ID)
}

func TestUpdateAppointmentUnconditional(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	apt, err := f.service.Create(ctx, f.client.ExternalAuthID, bookingRequest())
	require.NoError(t, err)

	// Any status is reachable from any other, no prior-state check.
	completed := model.AppointmentStatusCompleted
	updated, err := f.service.Update(ctx, apt.ID, &model.AppointmentPatch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)

	cancelled := model.AppointmentStatusCancelled
	updated, err = f.service.Update(ctx, apt.ID, &model.AppointmentPatch{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)

	// Date-only patch leaves the status alone.
	newDate := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	updated, err = f.service.Update(ctx, apt.ID, &model.AppointmentPatch{Date: &newDate})
	require.NoError(t, err)
	assert.Equal(t, newDate, updated.Date)
	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	f := newFixture(t)

	status := "completed"
	_, err := f.service.Update(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e", &model.AppointmentPatch{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListForRequester(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Create(ctx, f.client.ExternalAuthID, bookingRequest())
	require.NoError(t, err)
	_, err = f.service.Create(ctx, f.client.ExternalAuthID, bookingRequest())
	require.NoError(t, err)

	listed, err := f.service.ListForRequester(ctx, f.client.ExternalAuthID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestListByBusinessRequiresBusiness(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListByBusiness(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListByClientRequiresUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListByClient(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteAppointment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	apt, err := f.service.Create(ctx, f.client.ExternalAuthID, bookingRequest())
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, apt.ID))

	err = f.service.Delete(ctx, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
