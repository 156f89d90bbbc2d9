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

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `
	id, business_id, service_id, client_id, date, status,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	appointment.Touch()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.BusinessID,
		appointment.ServiceID,
		appointment.ClientID,
		appointment.Date,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByClient(ctx context.Context, clientID string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE client_id = $1
		ORDER BY date ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments by client: %w", err)
	}
	if err := r.populate(ctx, appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByBusiness(ctx context.Context, businessID string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE business_id = $1
		ORDER BY date ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list appointments by business: %w", err)
	}
	if err := r.populate(ctx, appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByBusinessWithPrice(ctx context.Context, businessID string) ([]*model.AppointmentWithPrice, error) {
	query := `
		SELECT a.id, a.business_id, a.service_id, a.client_id, a.date,
			   a.status, a.created_at, a.updated_at,
			   COALESCE(s.price, 0) AS service_price
		FROM appointments a
		LEFT JOIN services s ON s.id = a.service_id
		WHERE a.business_id = $1
	`
	var appointments []*model.AppointmentWithPrice
	if err := r.db.SelectContext(ctx, &appointments, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list appointments with price: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET date = $1, status = $2, updated_at = $3
		WHERE id = $4
	`
	appointment.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Date,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
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

// populate attaches business, service and client records.
func (r *appointmentRepository) populate(ctx context.Context, appointments []*model.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	businessIDs := make([]string, 0, len(appointments))
	serviceIDs := make([]string, 0, len(appointments))
	clientIDs := make([]string, 0, len(appointments))
	for _, a := range appointments {
		businessIDs = append(businessIDs, a.BusinessID)
		serviceIDs = append(serviceIDs, a.ServiceID)
		clientIDs = append(clientIDs, a.ClientID)
	}

	businesses, err := r.businessesByID(ctx, businessIDs)
	if err != nil {
		return err
	}
	services, err := r.servicesByID(ctx, serviceIDs)
	if err != nil {
		return err
	}
	clients, err := r.clientsByID(ctx, clientIDs)
	if err != nil {
		return err
	}

	for _, a := range appointments {
		a.Business = businesses[a.BusinessID]
		a.Service = services[a.ServiceID]
		a.Client = clients[a.ClientID]
	}
	return nil
}

func (r *appointmentRepository) businessesByID(ctx context.Context, ids []string) (map[string]*model.Business, error) {
	query, args, err := sqlx.In(`
		SELECT id, name, description, address, phone, image_url,
			   working_hours, owner_id, category_id, created_at, updated_at
		FROM businesses WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build business query: %w", err)
	}

	var businesses []*model.Business
	if err := r.db.SelectContext(ctx, &businesses, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load businesses: %w", err)
	}

	byID := make(map[string]*model.Business, len(businesses))
	for _, b := range businesses {
		byID[b.ID] = b
	}
	return byID, nil
}

func (r *appointmentRepository) servicesByID(ctx context.Context, ids []string) (map[string]*model.Service, error) {
	query, args, err := sqlx.In(`
		SELECT id, business_id, name, description, image_url,
			   duration_minutes, price, created_at, updated_at
		FROM services WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build service query: %w", err)
	}

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	byID := make(map[string]*model.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}
	return byID, nil
}

func (r *appointmentRepository) clientsByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	query, args, err := sqlx.In(`
		SELECT id, external_auth_id, email, name, image_url, role,
			   created_at, updated_at
		FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build client query: %w", err)
	}

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
