package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	redisClient "facemark.io/infrastructure/database/connection/cache"
	"facemark.io/infrastructure/logger"
)

var Cache = &RedisRepository{}

type RedisRepository struct {
	Client *redis.Client
}

func (redisRepo *RedisRepository) preRequest() {
	if redisRepo.Client == nil {
		redisRepo.Client = redisClient.Client
		logger.Info("redis repository initialisation complete")
	}
}

func (redisRepo *RedisRepository) CreateEntry(key string, payload interface{}, ttl time.Duration) bool {
	redisRepo.preRequest()
	if _, err := redisRepo.Client.Set(context.Background(), key, payload, ttl).Result(); err != nil {
		logger.Error("redis CreateEntry failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

func (redisRepo *RedisRepository) FindOne(key string) *string {
	redisRepo.preRequest()
	result, err := redisRepo.Client.Get(context.Background(), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		logger.Error("redis FindOne failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

// Exists reports whether a flag key is set. Errors read as absent so the
// caller falls through to the datastore.
func (redisRepo *RedisRepository) Exists(key string) bool {
	redisRepo.preRequest()
	count, err := redisRepo.Client.Exists(context.Background(), key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error("redis Exists failed", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "key",
				Data: key,
			})
		}
		return false
	}
	return count > 0
}

func (redisRepo *RedisRepository) DeleteOne(key string) bool {
	redisRepo.preRequest()
	result, err := redisRepo.Client.Del(context.Background(), key).Result()
	if err != nil {
		logger.Error("redis DeleteOne failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return int(result) == 1
}
