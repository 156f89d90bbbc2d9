package category

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// Servicer covers category administration.
type Servicer interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	Get(ctx context.Context, categoryID string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Update(ctx context.Context, categoryID, name string) (*model.Category, error)
	Delete(ctx context.Context, categoryID string) error
}

type Service struct {
	categories repository.CategoryRepository
	logger     *zerolog.Logger
}

func NewService(categories repository.CategoryRepository, logger *zerolog.Logger) *Service {
	return &Service{categories: categories, logger: logger}
}

func (s *Service) Create(ctx context.Context, name string) (*model.Category, error) {
	existing, err := s.categories.GetByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("category already exists")
	}

	cat := &model.Category{Name: name}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) Get(ctx context.Context, categoryID string) (*model.Category, error) {
	cat, err := s.categories.Get(ctx, categoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("category")
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) Update(ctx context.Context, categoryID, name string) (*model.Category, error) {
	cat, err := s.categories.Get(ctx, categoryID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("category")
	}
	if err != nil {
		return nil, err
	}

	cat.Name = name
	if err := s.categories.Update(ctx, cat); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}
	return cat, nil
}

func (s *Service) Delete(ctx context.Context, categoryID string) error {
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("category")
		}
		return err
	}
	return nil
}
