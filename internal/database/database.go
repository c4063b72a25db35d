package database

import (
	"context"
	"fmt"
	"time"

	"afiliados-api/internal/config"
	"afiliados-api/internal/models"
	"afiliados-api/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	DB          *gorm.DB
	RedisClient *redis.Client
)

// InitDatabase initializes the relational store and, when configured, Redis.
func InitDatabase(cfg *config.Config) error {
	if err := initSQL(cfg); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := initRedis(cfg); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := autoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// initSQL connects to PostgreSQL, falling back to SQLite for development
// when no DATABASE_URL is configured.
func initSQL(cfg *config.Config) error {
	var err error

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	}

	if cfg.DatabaseURL == "" {
		logging.Infof("Database URL not set, using SQLite for development")
		DB, err = gorm.Open(sqlite.Open("afiliados-api.db"), gormCfg)
	} else {
		DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Infof("Database connected successfully")
	return nil
}

// initRedis connects to Redis. Redis is optional: without it the service
// runs with the dashboard cache and webhook dedup disabled.
func initRedis(cfg *config.Config) error {
	if cfg.RedisURL == "" {
		logging.Infof("Redis URL not set, running without cache and webhook dedup")
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Infof("Redis connected successfully")
	return nil
}

func autoMigrate() error {
	return DB.AutoMigrate(
		&models.Afiliado{},
		&models.Cliente{},
		&models.Assinatura{},
		&models.Pagamento{},
		&models.Cobranca{},
		&models.ChurnClassificacao{},
	)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// GetRedis returns the Redis client (nil when Redis is not configured)
func GetRedis() *redis.Client {
	return RedisClient
}

// CloseDatabase closes database connections
func CloseDatabase() error {
	if sqlDB, err := DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logging.Errorf("Failed to close database: %v", err)
		}
	}

	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logging.Errorf("Failed to close Redis: %v", err)
		}
	}

	return nil
}
