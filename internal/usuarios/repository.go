package usuarios

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository is the persistence boundary for staff accounts. The inputs
// carry pre-hashed passwords; hashing happens in the Service.
type Repository interface {
	List(ctx context.Context) ([]Usuario, error)
	GetByID(ctx context.Context, id int64) (Usuario, error)
	GetByUsername(ctx context.Context, username string) (Usuario, error)
	Create(ctx context.Context, u Usuario) (Usuario, error)
	Update(ctx context.Context, u Usuario) (Usuario, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository keeps accounts in a map guarded by a RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	usuarios map[int64]Usuario
	nextID   int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{usuarios: make(map[int64]Usuario), nextID: 1}
}

// Seed loads a fixture account, assigning ids past the highest seeded one.
func (r *InMemoryRepository) Seed(u Usuario) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usuarios[u.ID] = u
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
}

func (r *InMemoryRepository) List(_ context.Context) ([]Usuario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Usuario, 0, len(r.usuarios))
	for _, u := range r.usuarios {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Usuario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.usuarios[id]
	if !ok {
		return Usuario{}, ErrUsuarioNotFound
	}
	return u, nil
}

// GetByUsername matches case-insensitively.
func (r *InMemoryRepository) GetByUsername(_ context.Context, username string) (Usuario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.usuarios {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return Usuario{}, ErrUsuarioNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, u Usuario) (Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.usuarios {
		if strings.EqualFold(existing.Username, u.Username) {
			return Usuario{}, ErrUsernameTaken
		}
	}
	u.ID = r.nextID
	r.nextID++
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.usuarios[u.ID] = u
	return u, nil
}

func (r *InMemoryRepository) Update(_ context.Context, u Usuario) (Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usuarios[u.ID]; !ok {
		return Usuario{}, ErrUsuarioNotFound
	}
	u.UpdatedAt = time.Now()
	r.usuarios[u.ID] = u
	return u, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usuarios[id]; !ok {
		return ErrUsuarioNotFound
	}
	delete(r.usuarios, id)
	return nil
}
