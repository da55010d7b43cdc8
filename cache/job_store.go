package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"wavecut/core/job"
	"wavecut/model"
)

// RedisJobStore implements job.Store on Redis.
// Keys: job:<id> => JSON(Job), plus a "jobs" sorted set scored by CreatedAt
// so listing and expiry sweeps stay cheap.
type RedisJobStore struct {
	client *redis.Client
}

// NewRedisJobStore creates a store over an established client.
func NewRedisJobStore(client *redis.Client) *RedisJobStore {
	return &RedisJobStore{client: client}
}

func (s *RedisJobStore) jobKey(id string) string { return fmt.Sprintf("job:%s", id) }

func (s *RedisJobStore) Create(ctx context.Context, j *model.Job) error {
	key := s.jobKey(j.ID)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("job %s already exists", j.ID)
	}
	b, err := json.Marshal(j)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, b, 0)
	pipe.ZAdd(ctx, "jobs", redis.Z{Score: float64(j.CreatedAt.Unix()), Member: j.ID})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	val, err := s.client.Get(ctx, s.jobKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, job.ErrNotFound
		}
		return nil, err
	}
	var j model.Job
	if err := json.Unmarshal(val, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *RedisJobStore) Update(ctx context.Context, j *model.Job) error {
	key := s.jobKey(j.ID)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return job.ErrNotFound
	}
	b, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, 0).Err()
}

func (s *RedisJobStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.jobKey(id))
	pipe.ZRem(ctx, "jobs", id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisJobStore) List(ctx context.Context) ([]*model.Job, error) {
	ids, err := s.client.ZRange(ctx, "jobs", 0, -1).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]*model.Job, 0, len(ids))
	for _, id := range ids {
		j, err := s.Get(ctx, id)
		if err != nil {
			if err == job.ErrNotFound {
				// Record expired between ZRange and Get; drop the index entry.
				s.client.ZRem(ctx, "jobs", id)
				continue
			}
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}
