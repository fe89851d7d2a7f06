package database

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis connects to Redis for caching and rate limiting. A failed
// connection disables both rather than blocking startup.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v. Caching and rate limiting disabled.", err)
		RedisClient = nil
		return
	}
	RedisClient = client
	log.Println("Redis connected successfully")
}
