package business

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository/memory"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

func TestLooksLikeStoreID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"5f1a2b3c4d5e6f7a8b9c0d1e", true},
		{"ABCDEF0123456789", true},
		{"deadbeef", true},
		{"", true},
		{"5f1a2b3c4d5e6f7a8b9c0d1e2f", false}, // 26 chars
		{"gXt8vQ2LkMn4PqRs", false},           // non-hex
		{"user-12345", false},
		{"5f1a2b3c-4d5e", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, looksLikeStoreID(tc.id), "id %q", tc.id)
	}
}

func TestResolveBusinessIDStoreShape(t *testing.T) {
	svc := newTestService(t)

	// A store-shaped id passes through untouched, even if no record
	// with that id exists.
	id, err := svc.service.resolveBusinessID(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.NoError(t, err)
	assert.Equal(t, "5f1a2b3c4d5e6f7a8b9c0d1e", id)
}

func TestResolveBusinessIDOwnerIndirection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	owner := &model.User{ExternalAuthID: "gXt8vQ2LkMn4PqRsTuVwXyZ0", Email: "o@x.dev", Name: "O", Role: model.RoleOwner}
	require.NoError(t, svc.users.Create(ctx, owner))

	first := &model.Business{Name: "First", OwnerID: owner.ID, CategoryID: "c"}
	require.NoError(t, svc.businesses.Create(ctx, first))
	second := &model.Business{Name: "Second", OwnerID: owner.ID, CategoryID: "c"}
	require.NoError(t, svc.businesses.Create(ctx, second))

	id, err := svc.service.resolveBusinessID(ctx, owner.ExternalAuthID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, id, "resolution picks the owner's first business")
}

func TestResolveBusinessIDUnknownExternalID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.service.resolveBusinessID(context.Background(), "gXt8vQ2LkMn4PqRsTuVwXyZ0")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestResolveBusinessIDOwnerWithoutBusiness(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	owner := &model.User{ExternalAuthID: "gXt8vQ2LkMn4PqRsTuVwXyZ0", Email: "o@x.dev", Name: "O", Role: model.RoleOwner}
	require.NoError(t, svc.users.Create(ctx, owner))

	_, err := svc.service.resolveBusinessID(ctx, owner.ExternalAuthID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

// testService bundles a Service with its backing fakes.
type testService struct {
	service      *Service
	users        *memory.UserRepository
	categories   *memory.CategoryRepository
	businesses   *memory.BusinessRepository
	appointments *memory.AppointmentRepository
	outbox       *memory.OutboxRepository
	storage      *fakeStorage
}

func newTestService(t *testing.T) *testService {
	t.Helper()
	fixture := &testService{
		users:        memory.NewUserRepository(),
		categories:   memory.NewCategoryRepository(),
		businesses:   memory.NewBusinessRepository(),
		appointments: memory.NewAppointmentRepository(),
		outbox:       memory.NewOutboxRepository(),
		storage:      &fakeStorage{},
	}
	fixture.service = NewService(
		fixture.users,
		fixture.categories,
		fixture.businesses,
		fixture.appointments,
		fixture.outbox,
		fixture.storage,
		testLogger(),
	)
	return fixture
}
