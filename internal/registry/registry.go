package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "rangebook/pkg/errors"
	"rangebook/pkg/model"
)

// Registries own the User and Resource records for the lifetime of the
// process. Registration is a plain keyed insert: re-registering an id
// overwrites the previous record. Bookings and audit entries hold only the
// ids, never the records themselves.

type UserRegistry interface {
	Register(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	Count(ctx context.Context) (int64, error)
}

type ResourceRegistry interface {
	Register(ctx context.Context, resource *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	Count(ctx context.Context) (int64, error)
}

type userRegistry struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewUserRegistry() UserRegistry {
	return &userRegistry{users: make(map[string]*model.User)}
}

func (r *userRegistry) Register(_ context.Context, user *model.User) error {
	if user == nil {
		return apperrors.InvalidInput("User cannot be nil")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *userRegistry) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("User", id)
	}
	return user, nil
}

func (r *userRegistry) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

type resourceRegistry struct {
	mu        sync.RWMutex
	resources map[string]*model.Resource
}

func NewResourceRegistry() ResourceRegistry {
	return &resourceRegistry{resources: make(map[string]*model.Resource)}
}

func (r *resourceRegistry) Register(_ context.Context, resource *model.Resource) error {
	if resource == nil {
		return apperrors.InvalidInput("Resource cannot be nil")
	}
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource.ID] = resource
	return nil
}

func (r *resourceRegistry) FindByID(_ context.Context, id string) (*model.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, ok := r.resources[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Resource", id)
	}
	return resource, nil
}

func (r *resourceRegistry) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.resources)), nil
}
