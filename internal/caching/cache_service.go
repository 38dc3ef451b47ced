package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"commercehub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error

	// Category caching
	GetCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (*models.Category, error)
	SetCategory(ctx context.Context, tenantID uuid.UUID, category *models.Category, ttl time.Duration) error
	DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error

	// Price quote caching. Quotes are short-lived because campaign windows
	// open and close independently of product writes.
	GetPriceQuote(ctx context.Context, tenantID, productID uuid.UUID) (*models.PriceResolution, error)
	SetPriceQuote(ctx context.Context, tenantID uuid.UUID, quote *models.PriceResolution, ttl time.Duration) error
	DeletePriceQuote(ctx context.Context, tenantID, productID uuid.UUID) error
	DeleteTenantPriceQuotes(ctx context.Context, tenantID uuid.UUID) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
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

func (r *redisCacheService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	key := fmt.Sprintf("commercehub:product:%s:%s", tenantID.String(), productID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("commercehub:product:%s:%s", tenantID.String(), product.ID.String())
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	key := fmt.Sprintf("commercehub:product:%s:%s", tenantID.String(), productID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (*models.Category, error) {
	key := fmt.Sprintf("commercehub:category:%s:%s", tenantID.String(), categoryID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var category models.Category
	if err := json.Unmarshal(data, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *redisCacheService) SetCategory(ctx context.Context, tenantID uuid.UUID, category *models.Category, ttl time.Duration) error {
	key := fmt.Sprintf("commercehub:category:%s:%s", tenantID.String(), category.ID.String())
	data, err := json.Marshal(category)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	key := fmt.Sprintf("commercehub:category:%s:%s", tenantID.String(), categoryID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetPriceQuote(ctx context.Context, tenantID, productID uuid.UUID) (*models.PriceResolution, error) {
	key := fmt.Sprintf("commercehub:price:%s:%s", tenantID.String(), productID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var quote models.PriceResolution
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *redisCacheService) SetPriceQuote(ctx context.Context, tenantID uuid.UUID, quote *models.PriceResolution, ttl time.Duration) error {
	key := fmt.Sprintf("commercehub:price:%s:%s", tenantID.String(), quote.ProductID.String())
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeletePriceQuote(ctx context.Context, tenantID, productID uuid.UUID) error {
	key := fmt.Sprintf("commercehub:price:%s:%s", tenantID.String(), productID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) DeleteTenantPriceQuotes(ctx context.Context, tenantID uuid.UUID) error {
	return r.deleteByPattern(ctx, fmt.Sprintf("commercehub:price:%s:*", tenantID.String()))
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return r.deleteByPattern(ctx, fmt.Sprintf("commercehub:*:%s:*", tenantID.String()))
}

func (r *redisCacheService) deleteByPattern(ctx context.Context, pattern string) error {
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("commercehub:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}
