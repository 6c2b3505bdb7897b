package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/veo1/online-marketplace/models"
)

// ErrMiss is returned by GetList when nothing is cached for the user.
var ErrMiss = errors.New("cache miss")

// ProductLists caches each user's product list as a JSON blob in Redis.
type ProductLists struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductLists connects to Redis and verifies the connection with PING.
func NewProductLists(addr string, ttl time.Duration) (*ProductLists, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &ProductLists{rdb: rdb, ttl: ttl}, nil
}

func versionKey(userID uint) string {
	return fmt.Sprintf("products:user:%d:version", userID)
}

func listKey(userID uint, version int64) string {
	return fmt.Sprintf("products:user:%d:v%d", userID, version)
}

// Version returns the user's current list version. A user never invalidated is at 0.
func (c *ProductLists) Version(ctx context.Context, userID uint) (int64, error) {
	version, err := c.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

func (c *ProductLists) GetList(ctx context.Context, userID uint, version int64) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, listKey(userID, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return decodeList(data)
}

// SetList stores products under version. Lists under older versions are left to expire.
func (c *ProductLists) SetList(ctx context.Context, userID uint, version int64, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, version), data, c.ttl).Err()
}

// Invalidate moves the user to a new version. The version key has no TTL.
func (c *ProductLists) Invalidate(ctx context.Context, userID uint) error {
	return c.rdb.Incr(ctx, versionKey(userID)).Err()
}

func (c *ProductLists) Close() error {
	return c.rdb.Close()
}

func decodeList(data []byte) ([]models.Product, error) {
	products := []models.Product{}
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode cached list: %w", err)
	}
	return products, nil
}
