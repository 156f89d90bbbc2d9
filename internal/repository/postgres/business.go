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

type businessRepository struct {
	db *sqlx.DB
}

func NewBusinessRepository(db *sqlx.DB) repository.BusinessRepository {
	return &businessRepository{db: db}
}

const businessColumns = `
	id, name, description, address, phone, image_url, working_hours,
	owner_id, category_id, created_at, updated_at
`

func (r *businessRepository) Create(ctx context.Context, business *model.Business) error {
	query := `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	business.Touch()

	_, err := r.db.ExecContext(ctx, query,
		business.ID,
		business.Name,
		business.Description,
		business.Address,
		business.Phone,
		business.ImageURL,
		business.WorkingHours,
		business.OwnerID,
		business.CategoryID,
		business.CreatedAt,
		business.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

func (r *businessRepository) Get(ctx context.Context, id string) (*model.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	var business model.Business
	err := r.db.GetContext(ctx, &business, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}

func (r *businessRepository) GetPopulated(ctx context.Context, id string) (*model.Business, error) {
	business, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.populate(ctx, []*model.Business{business}); err != nil {
		return nil, err
	}
	return business, nil
}

func (r *businessRepository) ListPopulated(ctx context.Context) ([]*model.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses ORDER BY created_at DESC`

	var businesses []*model.Business
	if err := r.db.SelectContext(ctx, &businesses, query); err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	if err := r.populate(ctx, businesses); err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) FindFirstByOwner(ctx context.Context, ownerID string) (*model.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`
	var business model.Business
	err := r.db.GetContext(ctx, &business, query, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find business by owner: %w", err)
	}
	return &business, nil
}

func (r *businessRepository) Update(ctx context.Context, business *model.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, description = $2, address = $3, phone = $4,
			image_url = $5, working_hours = $6, category_id = $7,
			updated_at = $8
		WHERE id = $9
	`
	business.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		business.Name,
		business.Description,
		business.Address,
		business.Phone,
		business.ImageURL,
		business.WorkingHours,
		business.CategoryID,
		business.UpdatedAt,
		business.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
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

func (r *businessRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete business: %w", err)
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

// populate attaches owner, category and services to each business.
func (r *businessRepository) populate(ctx context.Context, businesses []*model.Business) error {
	if len(businesses) == 0 {
		return nil
	}

	ownerIDs := make([]string, 0, len(businesses))
	categoryIDs := make([]string, 0, len(businesses))
	businessIDs := make([]string, 0, len(businesses))
	for _, b := range businesses {
		ownerIDs = append(ownerIDs, b.OwnerID)
		categoryIDs = append(categoryIDs, b.CategoryID)
		businessIDs = append(businessIDs, b.ID)
	}

	owners, err := r.usersByID(ctx, ownerIDs)
	if err != nil {
		return err
	}
	categories, err := r.categoriesByID(ctx, categoryIDs)
	if err != nil {
		return err
	}
	services, err := r.servicesByBusiness(ctx, businessIDs)
	if err != nil {
		return err
	}

	for _, b := range businesses {
		b.Owner = owners[b.OwnerID]
		b.Category = categories[b.CategoryID]
		b.Services = services[b.ID]
	}
	return nil
}

func (r *businessRepository) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	query, args, err := sqlx.In(`
		SELECT id, external_auth_id, email, name, image_url, role,
			   created_at, updated_at
		FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build owner query: %w", err)
	}

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}

	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (r *businessRepository) categoriesByID(ctx context.Context, ids []string) (map[string]*model.Category, error) {
	query, args, err := sqlx.In(
		`SELECT id, name, created_at FROM categories WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build category query: %w", err)
	}

	var categories []*model.Category
	if err := r.db.SelectContext(ctx, &categories, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	byID := make(map[string]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID, nil
}

func (r *businessRepository) servicesByBusiness(ctx context.Context, businessIDs []string) (map[string][]*model.Service, error) {
	query, args, err := sqlx.In(`
		SELECT id, business_id, name, description, image_url,
			   duration_minutes, price, created_at, updated_at
		FROM services WHERE business_id IN (?)`, businessIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build services query: %w", err)
	}

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	byBusiness := make(map[string][]*model.Service)
	for _, s := range services {
		byBusiness[s.BusinessID] = append(byBusiness[s.BusinessID], s)
	}
	return byBusiness, nil
}
