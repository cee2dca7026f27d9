package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dshills/materialcheck/internal/schema"
)

// keyPrefix namespaces every key this store writes.
const keyPrefix = "materialcheck:"

// Redis is a Repository storing JSON values under prefixed keys.
type Redis struct {
	Client *redis.Client
}

// OpenRedis connects to redisURL and verifies the connection.
func OpenRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{Client: client}, nil
}

func projectKey(id string) string { return keyPrefix + "project:" + id }
func itemsKey(id string) string   { return keyPrefix + "items:" + id }
func filesKey(id string) string   { return keyPrefix + "files:" + id }

var projectsKey = keyPrefix + "projects"

func (r *Redis) getJSON(ctx context.Context, key string, dest any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *Redis) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, 0).Err()
}

func (r *Redis) Project(ctx context.Context, id string) (*schema.Project, error) {
	var p schema.Project
	if err := r.getJSON(ctx, projectKey(id), &p); err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	return &p, nil
}

func (r *Redis) Projects(ctx context.Context) ([]schema.Project, error) {
	ids, err := r.Client.SMembers(ctx, projectsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	sort.Strings(ids)
	out := make([]schema.Project, 0, len(ids))
	for _, id := range ids {
		p, err := r.Project(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *Redis) SaveProject(ctx context.Context, p schema.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, projectKey(p.ID), data, 0)
		pipe.SAdd(ctx, projectsKey, p.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving project %s: %w", p.ID, err)
	}
	return nil
}

func (r *Redis) exists(ctx context.Context, id string) error {
	n, err := r.Client.Exists(ctx, projectKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *Redis) Items(ctx context.Context, projectID string) ([]schema.SubmittedItem, error) {
	items := []schema.SubmittedItem{}
	if err := r.getJSON(ctx, itemsKey(projectID), &items); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	return items, nil
}

func (r *Redis) PutItems(ctx context.Context, projectID string, items []schema.SubmittedItem) error {
	if err := r.exists(ctx, projectID); err != nil {
		return err
	}
	if items == nil {
		items = []schema.SubmittedItem{}
	}
	if err := r.setJSON(ctx, itemsKey(projectID), items); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}
	return nil
}

func (r *Redis) Files(ctx context.Context, projectID string) ([]schema.FileRecord, error) {
	files := []schema.FileRecord{}
	if err := r.getJSON(ctx, filesKey(projectID), &files); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading files: %w", err)
	}
	return files, nil
}

func (r *Redis) PutFiles(ctx context.Context, projectID string, files []schema.FileRecord) error {
	if err := r.exists(ctx, projectID); err != nil {
		return err
	}
	if files == nil {
		files = []schema.FileRecord{}
	}
	if err := r.setJSON(ctx, filesKey(projectID), files); err != nil {
		return fmt.Errorf("writing files: %w", err)
	}
	return nil
}

// MarkReminded uses optimistic locking so a concurrent SaveProject is not lost.
func (r *Redis) MarkReminded(ctx context.Context, projectID string, at time.Time) error {
	key := projectKey(projectID)
	return r.Client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		var p schema.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decoding project: %w", err)
		}
		at = at.UTC()
		p.LastReminderSentAt = &at
		out, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}, key)
}

func (r *Redis) Close() error { return r.Client.Close() }
