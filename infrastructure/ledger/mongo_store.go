package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"facemark.io/application/repository"
	"facemark.io/entities"
	"facemark.io/infrastructure/database/repository/cache"
	"facemark.io/infrastructure/database/repository/mongo"
)

// markedCacheTTL keeps the duplicate fast-path entry alive past midnight so
// a stale positive can never outlive its day by more than the rollover gap.
const markedCacheTTL = 26 * time.Hour

// MongoStore persists attendance events in the events collection and keeps a
// redis fast-path for the duplicate check, so the common "already marked"
// rejection skips a datastore round trip.
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func markedCacheKey(subjectID string, day string) string {
	return fmt.Sprintf("marked:%s:%s", subjectID, day)
}

func (s *MongoStore) CreateEvent(ctx context.Context, event entities.AttendanceEvent) (*entities.AttendanceEvent, error) {
	created, err := repository.AttendanceEventRepo().CreateOne(ctx, event)
	if err != nil {
		if errors.Is(err, mongo.ErrDuplicateKey) {
			return nil, ErrDuplicateEvent
		}
		return nil, err
	}
	cache.Cache.CreateEntry(markedCacheKey(event.SubjectID, event.Day), "1", markedCacheTTL)
	return created, nil
}

func (s *MongoStore) HasEvent(ctx context.Context, subjectID string, day string) (bool, error) {
	if cache.Cache.Exists(markedCacheKey(subjectID, day)) {
		return true, nil
	}
	count, err := repository.AttendanceEventRepo().CountDocs(ctx, map[string]interface{}{
		"subjectID": subjectID,
		"day":       day,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoStore) EventsForSubject(ctx context.Context, subjectID string) ([]entities.AttendanceEvent, error) {
	sort := interface{}(map[string]interface{}{"timestamp": -1})
	events, err := repository.AttendanceEventRepo().FindMany(ctx, map[string]interface{}{
		"subjectID": subjectID,
	}, &mongo.FindOptions{
		Sort: &sort,
	})
	if err != nil {
		return nil, err
	}
	return *events, nil
}

func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	return repository.AttendanceEventRepo().DeleteMany(ctx, map[string]interface{}{})
}
