package mgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/config"
	"github.com/mergington/activities/pkg/mgdb/mgmodel"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	StoreMemory = "memory"
	StoreSqlite = "sqlite"
	StoreMySQL  = "mysql"
	StoreRedis  = "redis"
)

func MakeMySQLDSN(c config.Configer) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.GetKey("DB_USERNAME"),
		c.GetKey("DB_PASSWORD"),
		c.GetKeyWithDefault("DB_HOST", "127.0.0.1"),
		c.GetKeyWithDefault("DB_PORT", "3306"),
		c.GetKey("DB_DATABASE"))
}

// ConnectToDB opens the database named by MG_STORE. MG_STORE=memory has no
// database and is an error here.
func ConnectToDB(c config.Configer) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	switch store := c.GetKeyWithDefault(config.KeyStore, config.DefaultStoreBackend); store {
	case StoreSqlite:
		db, err := gorm.Open(sqlite.Open(c.GetKeyWithDefault(config.KeySqliteDSN, config.DefaultSqliteDSN)), gormConfig)
		if err != nil {
			return nil, err
		}

		// sqlite allows one writer. A single connection keeps transactions
		// from tripping over each other and keeps an in-memory database alive.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)

		return db, nil

	case StoreMySQL:
		return gorm.Open(mysql.Open(MakeMySQLDSN(c)), gormConfig)

	default:
		return nil, fmt.Errorf("store '%s' has no database", store)
	}
}

const maxDBRetries = 5

// MustConnectToDB will attempt to connect to the database maxDBRetries times. If it isn't successful
// after that number of retries then it will call log.Fatalf(), which will cause the server to exit.
// Between retry attempts it will sleep for 3 seconds.
func MustConnectToDB(c config.Configer) *gorm.DB {
	retryCount := 1
	for {
		db, err := ConnectToDB(c)
		switch {
		case err == nil:
			return db
		case retryCount >= maxDBRetries:
			log.Fatalf("Failed to open db (%s): %s", c.GetKey(config.KeyStore), err)
		default:
			clog.UsingCtx(clog.DBCtx).Warnf("Unable to open db, attempt %d of %d: %s", retryCount, maxDBRetries, err)
			retryCount++
			time.Sleep(3 * time.Second)
		}
	}
}

// Migrate creates or updates the activities and participants tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&mgmodel.Activity{}, &mgmodel.Participant{}); err != nil {
		return errors.Wrap(err, "migrating activity tables")
	}

	return nil
}

// ConnectToRedis opens a client for MG_REDIS_ADDR and checks that the server
// answers.
func ConnectToRedis(c config.Configer) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         c.GetKeyWithDefault(config.KeyRedisAddr, config.DefaultRedisAddr),
		Password:     c.GetKey(config.KeyRedisPassword),
		DB:           c.GetIntKeyWithDefault(config.KeyRedisDB, 0),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}

	return rdb, nil
}
