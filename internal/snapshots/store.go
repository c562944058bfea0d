// Package snapshots persists whole collections as JSON blobs in Redis.
// The in-memory mode uses it to survive restarts without a relational
// database: each collection is dumped on an interval and reloaded on boot.
package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pielsano/podoclinic/pkg/logging"
)

// Collection names persisted by the store.
const (
	ColCitas     = "citas"
	ColPacientes = "pacientes"
	ColPodologos = "podologos"
	ColServicios = "servicios"
	ColUsuarios  = "usuarios"
	ColAuditLog  = "audit-logs"
)

// Store saves and loads JSON snapshots of collections.
type Store struct {
	redis  *redis.Client
	logger *logging.Logger
}

func NewStore(redisClient *redis.Client, logger *logging.Logger) *Store {
	if redisClient == nil {
		panic("snapshots: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{redis: redisClient, logger: logger}
}

func (s *Store) key(collection string) string {
	return fmt.Sprintf("podoclinic:snapshot:%s", collection)
}

// Save marshals v and overwrites the collection's snapshot. Snapshots do
// not expire.
func (s *Store) Save(ctx context.Context, collection string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshots: marshal %s: %w", collection, err)
	}
	if err := s.redis.Set(ctx, s.key(collection), data, 0).Err(); err != nil {
		return fmt.Errorf("snapshots: save %s: %w", collection, err)
	}
	s.redis.Set(ctx, s.key(collection)+":at", time.Now().Format(time.RFC3339), 0)
	return nil
}

// Load unmarshals the collection's snapshot into v. A missing snapshot is
// not an error; ok reports whether anything was loaded.
func (s *Store) Load(ctx context.Context, collection string, v any) (ok bool, err error) {
	data, err := s.redis.Get(ctx, s.key(collection)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("snapshots: load %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("snapshots: unmarshal %s: %w", collection, err)
	}
	return true, nil
}

// SavedAt returns when the collection was last snapshotted, if ever.
func (s *Store) SavedAt(ctx context.Context, collection string) (time.Time, bool) {
	raw, err := s.redis.Get(ctx, s.key(collection)+":at").Result()
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SaveAsync snapshots in the background; failures are logged, never
// surfaced. The periodic snapshot loop calls this for each collection.
func (s *Store) SaveAsync(collection string, v any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Save(ctx, collection, v); err != nil {
			s.logger.Error("snapshot save failed", "collection", collection, "error", err)
		}
	}()
}
