package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/gamebook-engine/pkg/session"
)

// sessionTTL bounds how long an abandoned session lingers. Save slots have
// no TTL; they are the player's durable progress.
const sessionTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for sessions
// and save slots, and the filesystem for story documents.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations (Redis-backed)

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func savesKey(storyID string) string {
	return "saves:" + storyID
}

func (r *RedisStorage) SaveSession(ctx context.Context, s *session.State) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "uuid", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	cmd := r.client.Set(ctx, sessionKey(s.ID), string(data), sessionTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save session", "uuid", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error) {
	cmd := r.client.Get(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Session not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s session.State
	if err := json.Unmarshal([]byte(cmd.Val()), &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	cmd := r.client.Del(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete session", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Save slot operations (Redis-backed). All slots for a story live as one
// JSON array under a single key.

func (r *RedisStorage) ListSaves(ctx context.Context, storyID string) ([]session.SaveSlot, error) {
	cmd := r.client.Get(ctx, savesKey(storyID))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return []session.SaveSlot{}, nil
		}
		r.logger.Error("Failed to load save slots", "story", storyID, "error", err)
		return nil, fmt.Errorf("failed to load save slots: %w", err)
	}

	var slots []session.SaveSlot
	if err := json.Unmarshal([]byte(cmd.Val()), &slots); err != nil {
		r.logger.Error("Failed to unmarshal save slots", "story", storyID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save slots: %w", err)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	return slots, nil
}

func (r *RedisStorage) PutSave(ctx context.Context, storyID string, slot session.SaveSlot) error {
	slots, err := r.ListSaves(ctx, storyID)
	if err != nil {
		return err
	}

	replaced := false
	for i := range slots {
		if slots[i].Slot == slot.Slot {
			slots[i] = slot
			replaced = true
			break
		}
	}
	if !replaced {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })

	return r.writeSaves(ctx, storyID, slots)
}

func (r *RedisStorage) DeleteSave(ctx context.Context, storyID string, slotID int) error {
	slots, err := r.ListSaves(ctx, storyID)
	if err != nil {
		return err
	}

	kept := slots[:0]
	for _, s := range slots {
		if s.Slot != slotID {
			kept = append(kept, s)
		}
	}

	return r.writeSaves(ctx, storyID, kept)
}

func (r *RedisStorage) writeSaves(ctx context.Context, storyID string, slots []session.SaveSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		r.logger.Error("Failed to marshal save slots", "story", storyID, "error", err)
		return fmt.Errorf("failed to marshal save slots: %w", err)
	}

	cmd := r.client.Set(ctx, savesKey(storyID), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to write save slots", "story", storyID, "error", err)
		return fmt.Errorf("failed to write save slots: %w", err)
	}
	return nil
}
