package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matst80/slask-builder/pkg/builder"
	"github.com/matst80/slask-builder/pkg/common/jsoncompat"
)

const defaultStateTtl = 24 * time.Hour

// RedisStorage persists builder states in Redis so any replica can
// serve any session.
type RedisStorage struct {
	client *redis.Client
	ctx    context.Context
	Ttl    time.Duration
}

func NewRedisStorage(addr, password string, db int) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStorage{
		client: rdb,
		ctx:    context.Background(),
		Ttl:    defaultStateTtl,
	}
}

func stateKey(sessionId int) string {
	return fmt.Sprintf("builder:%d", sessionId)
}

func (s *RedisStorage) GetState(sessionId int) (*builder.State, error) {
	data, err := s.client.Get(s.ctx, stateKey(sessionId)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state builder.State
	if err := jsoncompat.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStorage) SaveState(sessionId int, state *builder.State) error {
	data, err := jsoncompat.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, stateKey(sessionId), data, s.Ttl).Err()
}

func (s *RedisStorage) DeleteState(sessionId int) error {
	return s.client.Del(s.ctx, stateKey(sessionId)).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
