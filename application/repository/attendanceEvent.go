package repository

import (
	"sync"

	"facemark.io/entities"
	"facemark.io/infrastructure/database/connection/datastore"
	"facemark.io/infrastructure/database/repository/mongo"
)

var attendanceEventOnce = sync.Once{}

var attendanceEventRepository mongo.MongoRepository[entities.AttendanceEvent]

func AttendanceEventRepo() *mongo.MongoRepository[entities.AttendanceEvent] {
	attendanceEventOnce.Do(func() {
		attendanceEventRepository = mongo.MongoRepository[entities.AttendanceEvent]{Model: datastore.AttendanceEventModel}
	})
	return &attendanceEventRepository
}
