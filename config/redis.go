package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// dedupeTTL bounds how long a processed webhook key is remembered.
const dedupeTTL = 48 * time.Hour

// ConnectRedis establishes connection to Redis
func ConnectRedis() *redis.Client {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     redisPassword,
		DB:           redisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		log.Println("Webhook deduplication will be disabled")
		return nil
	}

	log.Println("Connected to Redis")
	RedisClient = client
	return client
}

// ClaimWebhookKey registers a webhook delivery key and reports whether this
// is the first time it was seen. When Redis is unavailable every delivery is
// treated as first, so duplicate webhooks degrade to reprocessing rather
// than dropped events.
func ClaimWebhookKey(ctx context.Context, eventType, sourceID string) (bool, error) {
	if RedisClient == nil {
		return true, nil
	}
	key := fmt.Sprintf("dedupe:%s:%s", eventType, sourceID)
	return RedisClient.SetNX(ctx, key, time.Now().Unix(), dedupeTTL).Result()
}

// ReleaseWebhookKey removes a claim so a failed delivery can be retried.
func ReleaseWebhookKey(ctx context.Context, eventType, sourceID string) {
	if RedisClient == nil {
		return
	}
	key := fmt.Sprintf("dedupe:%s:%s", eventType, sourceID)
	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		log.Printf("Warning: failed to release webhook key %s: %v", key, err)
	}
}

// GetRedisClient returns the Redis client instance
func GetRedisClient() *redis.Client {
	return RedisClient
}

// CloseRedis closes the Redis connection
func CloseRedis() {
	if RedisClient != nil {
		RedisClient.Close()
	}
}
