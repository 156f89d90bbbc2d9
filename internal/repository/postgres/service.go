package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
)

type serviceRepository struct {
	db *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (
			id, business_id, name, description, image_url,
			duration_minutes, price, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	service.Touch()

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.BusinessID,
		service.Name,
		service.Description,
		service.ImageURL,
		service.DurationMinutes,
		service.Price,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id string) (*model.Service, error) {
	query := `
		SELECT id, business_id, name, description, image_url,
			   duration_minutes, price, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service model.Service
	err := r.db.GetContext(ctx, &service, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) ListByBusiness(ctx context.Context, businessID string) ([]*model.Service, error) {
	query := `
		SELECT id, business_id, name, description, image_url,
			   duration_minutes, price, created_at, updated_at
		FROM services
		WHERE business_id = $1
		ORDER BY created_at ASC
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, image_url = $3,
			duration_minutes = $4, price = $5, updated_at = $6
		WHERE id = $7
	`
	service.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		service.Name,
		service.Description,
		service.ImageURL,
		service.DurationMinutes,
		service.Price,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
