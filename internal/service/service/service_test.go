package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository/memory"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

type fakeStorage struct {
	uploads int
	deletes []string
}

func (f *fakeStorage) Upload(_ context.Context, _, _ string, _ io.Reader) (string, error) {
	f.uploads++
	return fmt.Sprintf("https://cdn.example.com/file?id=blob-%d", f.uploads), nil
}

func (f *fakeStorage) Delete(_ context.Context, blobID string) error {
	f.deletes = append(f.deletes, blobID)
	return nil
}

type fixture struct {
	service    *Service
	users      *memory.UserRepository
	businesses *memory.BusinessRepository
	services   *memory.ServiceRepository
	outbox     *memory.OutboxRepository
	storage    *fakeStorage

	owner    *model.User
	intruder *model.User
	business *model.Business
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		users:      memory.NewUserRepository(),
		businesses: memory.NewBusinessRepository(),
		services:   memory.NewServiceRepository(),
		outbox:     memory.NewOutboxRepository(),
		storage:    &fakeStorage{},
	}
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	f.service = NewService(f.users, f.businesses, f.services, f.outbox, f.storage, &logger)

	f.owner = &model.User{ExternalAuthID: "oWnErAuThIdAbCdEfGhIjKlMn", Email: "o@x.dev", Name: "Owner", Role: model.RoleOwner}
	require.NoError(t, f.users.Create(ctx, f.owner))

	f.intruder = &model.User{ExternalAuthID: "iNtRuDeRaUtHiDxYz12345678", Email: "i@x.dev", Name: "Intruder", Role: model.RoleOwner}
	require.NoError(t, f.users.Create(ctx, f.intruder))

	f.business = &model.Business{Name: "Shop", OwnerID: f.owner.ID, CategoryID: "cat"}
	require.NoError(t, f.businesses.Create(ctx, f.business))

	return f
}

func TestCreateService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	svc, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID:      f.business.ID,
		Name:            "Haircut",
		DurationMinutes: 30,
		Price:           25.50,
	})
	require.NoError(t, err)

	assert.Equal(t, f.business.ID, svc.BusinessID)
	assert.Equal(t, 30, svc.DurationMinutes)
	assert.Equal(t, 25.50, svc.Price)

	require.Len(t, f.outbox.Events, 1)
	assert.Equal(t, model.EventServiceCreated, f.outbox.Events[0].EventType)
}

func TestCreateServiceForeignBusiness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.Create(ctx, f.intruder.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Nope",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	listed, listErr := f.services.ListByBusiness(ctx, f.business.ID)
	require.NoError(t, listErr)
	assert.Empty(t, listed)
}

func TestCreateServiceUnknownBusiness(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.owner.ExternalAuthID, CreateInput{
		BusinessID: "5f1a2b3c4d5e6f7a8b9c0d1e",
		Name:       "Nope",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateServiceClientRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	client := &model.User{ExternalAuthID: "cLiEnTaUtHiDxYz1234567890", Email: "c@x.dev", Name: "C", Role: model.RoleClient}
	require.NoError(t, f.users.Create(ctx, client))

	_, err := f.service.Create(ctx, client.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Nope",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestUpdateServiceNumericPassthrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	svc, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID:      f.business.ID,
		Name:            "Haircut",
		DurationMinutes: 30,
		Price:           25,
	})
	require.NoError(t, err)

	// Only the name is supplied; duration and price must not be zeroed.
	newName := "Haircut Deluxe"
	updated, err := f.service.Update(ctx, f.owner.ExternalAuthID, svc.ID, UpdateInput{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, 30, updated.DurationMinutes)
	assert.Equal(t, 25.0, updated.Price)

	// An explicit zero price sticks.
	zero := 0.0
	updated, err = f.service.Update(ctx, f.owner.ExternalAuthID, svc.ID, UpdateInput{Price: &zero})
	require.NoError(t, err)
	assert.Zero(t, updated.Price)
	assert.Equal(t, 30, updated.DurationMinutes)
}

func TestUpdateServiceOwnershipRechecked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	svc, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Haircut",
	})
	require.NoError(t, err)

	newName := "Hijacked"
	_, err = f.service.Update(ctx, f.intruder.ExternalAuthID, svc.ID, UpdateInput{Name: &newName})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	stored, getErr := f.services.Get(ctx, svc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "Haircut", stored.Name)
}

func TestUpdateServiceReplacesImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	svc, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Haircut",
		Image:      &model.ImageUpload{Filename: "a.png", ContentType: "image/png", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)

	_, err = f.service.Update(ctx, f.owner.ExternalAuthID, svc.ID, UpdateInput{
		Image: &model.ImageUpload{Filename: "b.png", ContentType: "image/png", Data: strings.NewReader("b")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, f.storage.uploads)
	assert.Equal(t, []string{"blob-1"}, f.storage.deletes)
}

func TestDeleteServiceBlobHandling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	withImage, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "With",
		Image:      &model.ImageUpload{Filename: "a.png", ContentType: "image/png", Data: strings.NewReader("a")},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, f.owner.ExternalAuthID, withImage.ID))
	assert.Equal(t, []string{"blob-1"}, f.storage.deletes)

	withoutImage, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Without",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, f.owner.ExternalAuthID, withoutImage.ID))
	assert.Len(t, f.storage.deletes, 1)
}

func TestDeleteServiceOwnershipRechecked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	svc, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Haircut",
	})
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.intruder.ExternalAuthID, svc.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, getErr := f.services.Get(ctx, svc.ID)
	assert.NoError(t, getErr, "service survives the rejected delete")
}

func TestGetServicePopulatesBusiness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.service.Create(ctx, f.owner.ExternalAuthID, CreateInput{
		BusinessID: f.business.ID,
		Name:       "Haircut",
	})
	require.NoError(t, err)

	svc, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, svc.Business)
	assert.Equal(t, f.business.ID, svc.Business.ID)
}

func TestGetServiceNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
