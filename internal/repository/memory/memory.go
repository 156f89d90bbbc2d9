// Package memory provides in-memory repository implementations used by
// the service-layer tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-api/internal/model"
	"github.com/agendahub/booking-api/internal/repository"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.ExternalAuthID == user.ExternalAuthID {
			return repository.ErrDuplicate
		}
	}
	user.Touch()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Get(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByExternalAuthID(_ context.Context, externalAuthID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalAuthID == externalAuthID {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type CategoryRepository struct {
	mu         sync.Mutex
	categories map[string]model.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]model.Category)}
}

func (r *CategoryRepository) Create(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category.ID == "" {
		category.ID = model.NewID()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) Get(_ context.Context, id string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) GetByName(_ context.Context, name string) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CategoryRepository) List(_ context.Context) ([]*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) Update(_ context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type BusinessRepository struct {
	mu         sync.Mutex
	businesses map[string]model.Business
	order      []string
}

func NewBusinessRepository() *BusinessRepository {
	return &BusinessRepository{businesses: make(map[string]model.Business)}
}

func (r *BusinessRepository) Create(_ context.Context, business *model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	business.Touch()
	r.businesses[business.ID] = *business
	r.order = append(r.order, business.ID)
	return nil
}

func (r *BusinessRepository) Get(_ context.Context, id string) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *BusinessRepository) GetPopulated(ctx context.Context, id string) (*model.Business, error) {
	return r.Get(ctx, id)
}

func (r *BusinessRepository) ListPopulated(_ context.Context) ([]*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Business, 0, len(r.order))
	for _, id := range r.order {
		if b, ok := r.businesses[id]; ok {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r *BusinessRepository) FindFirstByOwner(_ context.Context, ownerID string) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if b, ok := r.businesses[id]; ok && b.OwnerID == ownerID {
			b := b
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BusinessRepository) Update(_ context.Context, business *model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.businesses[business.ID]; !ok {
		return repository.ErrNotFound
	}
	r.businesses[business.ID] = *business
	return nil
}

func (r *BusinessRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.businesses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.businesses, id)
	return nil
}

type ServiceRepository struct {
	mu       sync.Mutex
	services map[string]model.Service
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{services: make(map[string]model.Service)}
}

func (r *ServiceRepository) Create(_ context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	service.Touch()
	r.services[service.ID] = *service
	return nil
}

func (r *ServiceRepository) Get(_ context.Context, id string) (*model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *ServiceRepository) ListByBusiness(_ context.Context, businessID string) ([]*model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Service
	for _, s := range r.services {
		if s.BusinessID == businessID {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}

func (r *ServiceRepository) Update(_ context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[service.ID]; !ok {
		return repository.ErrNotFound
	}
	r.services[service.ID] = *service
	return nil
}

func (r *ServiceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.services, id)
	return nil
}

type AppointmentRepository struct {
	mu           sync.Mutex
	appointments map[string]model.Appointment
	// Prices holds per-service prices used by ListByBusinessWithPrice.
	Prices map[string]float64
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		appointments: make(map[string]model.Appointment),
		Prices:       make(map[string]float64),
	}
}

func (r *AppointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment.Touch()
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *AppointmentRepository) Get(_ context.Context, id string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) ListByClient(_ context.Context, clientID string) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.ClientID == clientID {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *AppointmentRepository) ListByBusiness(_ context.Context, businessID string) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.BusinessID == businessID {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *AppointmentRepository) ListByBusinessWithPrice(_ context.Context, businessID string) ([]*model.AppointmentWithPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AppointmentWithPrice
	for _, a := range r.appointments {
		if a.BusinessID == businessID {
			out = append(out, &model.AppointmentWithPrice{
				Appointment:  a,
				ServicePrice: r.Prices[a.ServiceID],
			})
		}
	}
	return out, nil
}

func (r *AppointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[appointment.ID]; !ok {
		return repository.ErrNotFound
	}
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *AppointmentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

type OutboxRepository struct {
	mu     sync.Mutex
	Events []*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

func (r *OutboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *OutboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.OutboxEvent
	for _, e := range r.Events {
		if e.Status == model.OutboxStatusPending {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errorMessage
			if status == model.OutboxStatusProcessed {
				now := time.Now().UTC()
				e.ProcessedAt = &now
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *OutboxRepository) IncrementRetry(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e.ID == id {
			e.RetryCount++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *OutboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.OutboxEvent
	var deleted int64
	for _, e := range r.Events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.Events = kept
	return deleted, nil
}
