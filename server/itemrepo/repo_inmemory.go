package itemrepo

import (
	"errors"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu      sync.RWMutex
	items   map[int64]*Item
	nextID  int64
	nowFunc func() time.Time
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		items:   make(map[int64]*Item),
		nowFunc: time.Now,
	}
}

// Create assigns an ID and timestamps and stores a copy of item
func (r *InMemoryRepo) Create(item *Item) (*Item, error) {
	if item == nil {
		return nil, errors.New("item cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *item
	stored.ID = r.nextID
	stored.CreatedAt = r.nowFunc()
	stored.UpdatedAt = stored.CreatedAt
	r.items[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepo) Get(id int64) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	// Return a copy to prevent external modifications
	out := *item
	return &out, nil
}

// List returns the items owned by owner ordered by ID. An empty owner lists everything.
func (r *InMemoryRepo) List(owner string) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*Item, 0, len(r.items))
	for _, item := range r.items {
		if owner != "" && item.Owner != owner {
			continue
		}
		out := *item
		items = append(items, &out)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *InMemoryRepo) Update(item *Item) (*Item, error) {
	if item == nil {
		return nil, errors.New("item cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[item.ID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	stored := *item
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.nowFunc()
	r.items[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return apperrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
