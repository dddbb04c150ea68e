package mgdb

import (
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/config"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/mergington/activities/pkg/mgdb/stor"
)

// OpenActivityStor builds the registry backend selected by MG_STORE and
// seeds it with activities. The in-memory backend is the default.
func OpenActivityStor(c config.Configer, activities []mgmodel.Activity) (stor.ActivityStor, error) {
	enforceCapacity := c.GetBoolKeyWithDefault(config.KeyEnforceCapacity, false)
	store := c.GetKeyWithDefault(config.KeyStore, config.DefaultStoreBackend)

	clog.UsingCtx(clog.DBCtx).Infof("Using %s activity store (enforce capacity: %t)", store, enforceCapacity)

	switch store {
	case StoreMemory:
		s := stor.NewInMemoryActivityStor(activities)
		s.EnforceCapacity = enforceCapacity
		return s, nil

	case StoreRedis:
		rdb, err := ConnectToRedis(c)
		if err != nil {
			return nil, err
		}

		s := stor.NewRedisActivityStor(rdb)
		s.EnforceCapacity = enforceCapacity
		if err := s.SeedActivities(activities); err != nil {
			return nil, err
		}

		return s, nil
	}

	db, err := ConnectToDB(c)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	s := stor.NewGormActivityStor(db)
	s.EnforceCapacity = enforceCapacity
	if err := s.SeedActivities(activities); err != nil {
		return nil, err
	}

	return s, nil
}
