package category

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendahub/booking-api/internal/repository/memory"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

func newService() (*Service, *memory.CategoryRepository) {
	repo := memory.NewCategoryRepository()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewService(repo, &logger), repo
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	cat, err := svc.Create(ctx, "Barbershop")
	require.NoError(t, err)
	assert.Equal(t, "Barbershop", cat.Name)
	assert.NotEmpty(t, cat.ID)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Create(ctx, "Barbershop")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Barbershop")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestListCategoriesSortedByName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	for _, name := range []string{"Nails", "Barbershop", "Massage"} {
		_, err := svc.Create(ctx, name)
		require.NoError(t, err)
	}

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Barbershop", listed[0].Name)
	assert.Equal(t, "Massage", listed[1].Name)
	assert.Equal(t, "Nails", listed[2].Name)
}

func TestGetCategoryNotFound(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Get(context.Background(), "5f1a2b3c4d5e6f7a8b9c0d1e")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	cat, err := svc.Create(ctx, "Barber")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, cat.ID, "Barbershop")
	require.NoError(t, err)
	assert.Equal(t, "Barbershop", updated.Name)
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	cat, err := svc.Create(ctx, "Barbershop")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, cat.ID))

	_, err = repo.Get(ctx, cat.ID)
	assert.Error(t, err)

	err = svc.Delete(ctx, cat.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
