package mongo

import (
	"context"
	"errors"
	"time"

	"facemark.io/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateKey is returned when an insert violates a unique index. The
// ledger relies on this to detect a concurrent write for the same
// (subject, day) pair.
var ErrDuplicateKey = errors.New("duplicate key")

func (repo *MongoRepository[T]) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 10*time.Second)
}

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	c, cancel := repo.requestContext(ctx)
	defer cancel()

	parsed := payload.ParseModel().(*T)
	_, err := repo.Model.InsertOne(c, parsed)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		logger.Error("an error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return parsed, nil
}

func (repo *MongoRepository[T]) FindOneByFilter(ctx context.Context, filter map[string]interface{}, opts ...*FindOptions) (*T, error) {
	c, cancel := repo.requestContext(ctx)
	defer cancel()

	var result T
	err := repo.Model.FindOne(c, normaliseFilter(filter)).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("an error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return repo.FindOneByFilter(ctx, map[string]interface{}{"_id": id})
}

func (repo *MongoRepository[T]) FindMany(ctx context.Context, filter map[string]interface{}, opts ...*FindOptions) (*[]T, error) {
	c, cancel := repo.requestContext(ctx)
	defer cancel()

	findOpts := options.Find()
	if len(opts) != 0 && opts[0] != nil {
		if opts[0].Sort != nil {
			findOpts.SetSort(*opts[0].Sort)
		}
		if opts[0].Skip != nil {
			findOpts.SetSkip(*opts[0].Skip)
		}
		if opts[0].Limit != nil {
			findOpts.SetLimit(*opts[0].Limit)
		}
	}
	cursor, err := repo.Model.Find(c, normaliseFilter(filter), findOpts)
	if err != nil {
		logger.Error("an error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	results := []T{}
	if err := cursor.All(c, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func (repo *MongoRepository[T]) CountDocs(ctx context.Context, filter map[string]interface{}) (int64, error) {
	c, cancel := repo.requestContext(ctx)
	defer cancel()

	count, err := repo.Model.CountDocuments(c, normaliseFilter(filter))
	if err != nil {
		logger.Error("an error occured while running CountDocs", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return count, nil
}

func (repo *MongoRepository[T]) DeleteMany(ctx context.Context, filter map[string]interface{}) (int64, error) {
	c, cancel := repo.requestContext(ctx)
	defer cancel()

	result, err := repo.Model.DeleteMany(c, normaliseFilter(filter))
	if err != nil {
		logger.Error("an error occured while running DeleteMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.DeletedCount, nil
}

func normaliseFilter(filter map[string]interface{}) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
