package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the connection for the configured store. Exactly one of Mongo and
// Postgres is set.
type DB struct {
	Mongo    *mongo.Client
	MongoDB  *mongo.Database
	Postgres *gorm.DB
	log      *zap.Logger
}

// InitDB opens the store selected by cfg.StoreDriver
func InitDB(cfg *Config, log *zap.Logger) (*DB, error) {
	db := &DB{log: log}
	switch cfg.StoreDriver {
	case DriverPostgres:
		pg, err := initPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		db.Postgres = pg
		log.Info("Successfully connected to PostgreSQL")
	default:
		client, database, err := initMongo(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = client
		db.MongoDB = database
		log.Info("Successfully connected to MongoDB", zap.String("database", database.Name()))
	}
	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo connects to MongoDB. The database name comes from the URL path.
func initMongo(cfg *Config) (*mongo.Client, *mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(cfg.MongoURL)
	if err != nil {
		return nil, nil, err
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = "user"
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURL)
	if cfg.MongoUser != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   cfg.MongoUser,
			Password:   cfg.MongoPass,
			AuthSource: "admin",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	if err = pingOrDisconnect(ctx, client); err != nil {
		return nil, nil, err
	}
	return client, client.Database(dbName), nil
}

// pingOrDisconnect pings the primary and releases the client when it is unreachable
func pingOrDisconnect(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}
	return nil
}

// Ping checks the configured store
func (db *DB) Ping(ctx context.Context) error {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return db.Mongo.Ping(ctx, nil)
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.Error("Error getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error("Error closing PostgreSQL connection", zap.Error(err))
		} else {
			db.log.Info("PostgreSQL connection closed.")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error("Error closing MongoDB connection", zap.Error(err))
		} else {
			db.log.Info("MongoDB connection closed.")
		}
	}
}
