package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"dinemart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	SetOrder(ctx context.Context, order *models.Order, ttl time.Duration) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error

	// Generic string operations, used for presigned receipt URLs
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func orderKey(orderID uuid.UUID) string {
	return fmt.Sprintf("dinemart:order:%s", orderID.String())
}

// ReceiptURLKey is the cache key under which a generated receipt's presigned
// URL is stored via the generic string operations.
func ReceiptURLKey(orderID uuid.UUID) string {
	return fmt.Sprintf("dinemart:receipt:%s", orderID.String())
}

func (r *redisCacheService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	data, err := r.client.Get(ctx, orderKey(orderID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *redisCacheService) SetOrder(ctx context.Context, order *models.Order, ttl time.Duration) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, orderKey(order.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.client.Del(ctx, orderKey(orderID)).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
