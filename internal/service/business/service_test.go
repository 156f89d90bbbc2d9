package business

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/booking-api/internal/model"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

type fakeStorage struct {
	uploads    int
	deletes    []string
	failUpload bool
}

func (f *fakeStorage) Upload(_ context.Context, _, _ string, _ io.Reader) (string, error) {
	if f.failUpload {
		return "", apperrors.Upstream("storage unavailable", nil)
	}
	f.uploads++
	return fmt.Sprintf("https://cdn.example.com/file?id=blob-%d", f.uploads), nil
}

func (f *fakeStorage) Delete(_ context.Context, blobID string) error {
	f.deletes = append(f.deletes, blobID)
	return nil
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

const validHours = `[{"day": "monday", "open": "09:00", "close": "18:00"}, {"day": "saturday", "open": "10:00", "close": "14:00"}]`

func seedOwner(t *testing.T, svc *testService) *model.User {
	t.Helper()
	owner := &model.User{ExternalAuthID: "gXt8vQ2LkMn4PqRsTuVwXyZ0", Email: "owner@x.dev", Name: "Owner", Role: model.RoleOwner}
	require.NoError(t, svc.users.Create(context.Background(), owner))
	return owner
}

func seedCategory(t *testing.T, svc *testService) *model.Category {
	t.Helper()
	cat := &model.Category{Name: "Barbershop"}
	require.NoError(t, svc.categories.Create(context.Background(), cat))
	return cat
}

func TestCreateBusiness(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	owner := seedOwner(t, svc)
	cat := seedCategory(t, svc)

	business, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "Cut & Go",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(validHours),
	})
	require.NoError(t, err)

	assert.Equal(t, owner.ID, business.OwnerID)
	assert.Equal(t, "09:00", business.WorkingHours.Week.Start)
	assert.Equal(t, "18:00", business.WorkingHours.Week.End)
	assert.Equal(t, "10:00", business.WorkingHours.Weekend.Start)
	assert.Equal(t, "14:00", business.WorkingHours.Weekend.End)

	stored, err := svc.businesses.Get(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cut & Go", stored.Name)

	require.Len(t, svc.outbox.Events, 1)
	assert.Equal(t, model.EventBusinessCreated, svc.outbox.Events[0].EventType)
}

func TestCreateBusinessRequiresOwnerRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	cat := seedCategory(t, svc)

	client := &model.User{ExternalAuthID: "cLiEnTaUtHiDxYz123456789X", Email: "c@x.dev", Name: "C", Role: model.RoleClient}
	require.NoError(t, svc.users.Create(ctx, client))

	_, err := svc.service.Create(ctx, client.ExternalAuthID, CreateInput{
		Name:         "Nope",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(validHours),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	all, err := svc.businesses.ListPopulated(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateBusinessUnknownCategory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	owner := seedOwner(t, svc)

	_, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "Nope",
		CategoryID:   "5f1a2b3c4d5e6f7a8b9c0d1e",
		WorkingHours: json.RawMessage(validHours),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateBusinessInvalidHoursPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	owner := seedOwner(t, svc)
	cat := seedCategory(t, svc)

	_, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "Broken",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(`{"week": {"start": "09:00", "end": "18:00"}}`),
		Image:        &model.ImageUpload{Filename: "x.png", ContentType: "image/png", Data: strings.NewReader("img")},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	all, listErr := svc.businesses.ListPopulated(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, all)
	assert.Zero(t, svc.storage.uploads, "no blob uploaded for a rejected create")
}

func TestCreateBusinessUploadFailureAborts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	owner := seedOwner(t, svc)
	cat := seedCategory(t, svc)
	svc.storage.failUpload = true

	_, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "Nope",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(validHours),
		Image:        &model.ImageUpload{Filename: "x.png", ContentType: "image/png", Data: strings.NewReader("img")},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUpstream))

	all, listErr := svc.businesses.ListPopulated(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, all)
}

func TestGetByIDMissingIsNil(t *testing.T) {
	svc := newTestService(t)

	business, err := svc.service.GetByID(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.NoError(t, err)
	assert.Nil(t, business)
}

func TestUpdateBusinessReplacesImage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	owner := seedOwner(t, svc)
	cat := seedCategory(t, svc)

	business, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "Cut & Go",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(validHours),
		Image:        &model.ImageUpload{Filename: "a.png", ContentType: "image/png", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.NotNil(t, business.ImageURL)

	newName := "Cut & Go Deluxe"
	updated, err := svc.service.Update(ctx, business.ID, UpdateInput{
		Name:  &newName,
		Image: &model.ImageUpload{Filename: "b.png", ContentType: "image/png", Data: strings.NewReader("b")},
	})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, 2, svc.storage.uploads)
	assert.Equal(t, []string{"blob-1"}, svc.storage.deletes, "old blob deleted exactly once")
	// Untouched fields survive.
	assert.Equal(t, "09:00", updated.WorkingHours.Week.Start)
}

func TestUpdateBusinessNotFound(t *testing.T) {
	svc := newTestService(t)

	name := "x"
	_, err := svc.service.Update(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e", UpdateInput{Name: &name})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteBusinessImageBlobHandling(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	owner := seedOwner(t, svc)
	cat := seedCategory(t, svc)

	withImage, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "With",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(validHours),
		Image:        &model.ImageUpload{Filename: "a.png", ContentType: "image/png", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)

	require.NoError(t, svc.service.Delete(ctx, withImage.ID))
	assert.Equal(t, []string{"blob-1"}, svc.storage.deletes)

	withoutImage, err := svc.service.Create(ctx, owner.ExternalAuthID, CreateInput{
		Name:         "Without",
		CategoryID:   cat.ID,
		WorkingHours: json.RawMessage(validHours),
	})
	require.NoError(t, err)

	require.NoError(t, svc.service.Delete(ctx, withoutImage.ID))
	assert.Len(t, svc.storage.deletes, 1, "no delete call for a business without image")
}

func TestGetStatsLabels(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	businessID := "5f1a2b3c4d5e6f7a8b9c0d1e"
	svc.appointments.Prices["svc1"] = 50

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.appointments.Create(ctx, &model.Appointment{
			BusinessID: businessID,
			ServiceID:  "svc1",
			ClientID:   fmt.Sprintf("client%d", i),
			Status:     model.AppointmentStatusPendent,
		}))
	}

	stats, err := svc.service.GetStats(ctx, businessID)
	require.NoError(t, err)

	// Creation writes "pendent" but the aggregation counts "pendente"
	// and "confirmado", so these appointments fall through every bucket.
	assert.Equal(t, 3, stats.TotalAppointments)
	assert.Zero(t, stats.PendingAppointments)
	assert.Zero(t, stats.CompletedAppointments)
	assert.Zero(t, stats.ConfirmedRevenue)
	assert.Equal(t, 3, stats.DistinctClients)
}

func TestGetStatsConfirmedRevenue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	businessID := "5f1a2b3c4d5e6f7a8b9c0d1e"
	svc.appointments.Prices["svc1"] = 40

	for _, status := range []string{"confirmado", "confirmado", "pendente"} {
		require.NoError(t, svc.appointments.Create(ctx, &model.Appointment{
			BusinessID: businessID,
			ServiceID:  "svc1",
			ClientID:   "client1",
			Status:     status,
		}))
	}

	stats, err := svc.service.GetStats(ctx, businessID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalAppointments)
	assert.Equal(t, 1, stats.PendingAppointments)
	assert.Equal(t, 2, stats.CompletedAppointments)
	assert.Equal(t, 80.0, stats.ConfirmedRevenue)
	assert.Equal(t, 1, stats.DistinctClients)
}

func TestCreateUnknownRequester(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.service.Create(context.Background(), "nobody-here", CreateInput{Name: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}
