package connection

import (
	"facemark.io/infrastructure/database/connection/cache"
	"facemark.io/infrastructure/database/connection/datastore"
)

func ConnectToDatabase() {
	datastore.ConnectToDatabase()
	cache.ConnectToCache()
}
