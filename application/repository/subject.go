package repository

import (
	"sync"

	"facemark.io/entities"
	"facemark.io/infrastructure/database/connection/datastore"
	"facemark.io/infrastructure/database/repository/mongo"
)

var subjectOnce = sync.Once{}

var subjectRepository mongo.MongoRepository[entities.Subject]

func SubjectRepo() *mongo.MongoRepository[entities.Subject] {
	subjectOnce.Do(func() {
		subjectRepository = mongo.MongoRepository[entities.Subject]{Model: datastore.SubjectModel}
	})
	return &subjectRepository
}
