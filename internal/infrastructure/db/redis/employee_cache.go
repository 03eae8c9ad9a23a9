// Package redis connects to Redis and caches employee records in front of the
// record store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
)

const DefaultEmployeeTTL = 10 * time.Minute

// EmployeeCache is a ports.Store whose employee lookups are served from Redis
// when possible. Employees never change role, so a cached record stays valid
// until its TTL runs out. Redis failures fall back to the wrapped store.
type EmployeeCache struct {
	ports.Store
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewEmployeeCache(store ports.Store, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *EmployeeCache {
	if ttl <= 0 {
		ttl = DefaultEmployeeTTL
	}
	return &EmployeeCache{Store: store, client: client, ttl: ttl, logger: logger}
}

// cachedEmployee carries the credential hash, which domain.Employee omits
// from its JSON form.
type cachedEmployee struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

func employeeKey(id int64) string {
	return fmt.Sprintf("shop:employee:%d", id)
}

func (c *EmployeeCache) FindEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	key := employeeKey(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if e, err := decodeEmployee(raw); err == nil {
			return e, nil
		}
		c.logger.Warn().Int64("employee_id", id).Msg("discarding malformed cached employee")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Int64("employee_id", id).Msg("employee cache read failed")
	}

	e, err := c.Store.FindEmployeeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, key, e)
	return e, nil
}

func (c *EmployeeCache) remember(ctx context.Context, key string, e *domain.Employee) {
	raw, err := json.Marshal(cachedEmployee{
		ID:           e.ID,
		Name:         e.Name,
		PasswordHash: e.PasswordHash,
		Role:         string(e.Role),
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Int64("employee_id", e.ID).Msg("employee cache write failed")
	}
}

func decodeEmployee(raw []byte) (*domain.Employee, error) {
	var ce cachedEmployee
	if err := json.Unmarshal(raw, &ce); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(ce.Role)
	if err != nil {
		return nil, err
	}
	return &domain.Employee{ID: ce.ID, Name: ce.Name, PasswordHash: ce.PasswordHash, Role: role}, nil
}
