package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/config"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the relational store handed to the router. The ORM client
// serves the resource handlers; the direct client serves raw aggregate
// queries.
type Storage interface {
	Init() error
	Close() error
	HealthCheck(ctx context.Context) error
	DB() *gorm.DB
	Direct() *sql.DB
}

type GORMStore struct {
	db     *gorm.DB
	direct *sql.DB
}

// NewGORMStore wraps already opened clients. direct may be nil, in which
// case the ORM's own pool is used for raw queries.
func NewGORMStore(db *gorm.DB, direct *sql.DB) *GORMStore {
	return &GORMStore{db: db, direct: direct}
}

// GormConfig is shared by production and test connections.
func GormConfig(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		PrepareStmt:    true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// StartGORM opens the ORM connection pool and the direct query client.
func StartGORM(env *config.EnvironmentVariable) (*GORMStore, error) {
	logLevel := logger.Info
	if env.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(env.DSN()), GormConfig(logLevel))
	if err != nil {
		log.Errorf("Unable to connect to PostgreSQL with GORM: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	direct, err := OpenDirect(env.DSN())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("Connected to PostgreSQL")
	return &GORMStore{db: db, direct: direct}, nil
}

// Init runs AutoMigrate for every table.
func (s *GORMStore) Init() error {
	log.Info("Running AutoMigrate")
	if err := s.db.AutoMigrate(model.All()...); err != nil {
		log.Errorf("AutoMigrate failed: %v", err)
		return err
	}
	return nil
}

func (s *GORMStore) Close() error {
	log.Info("Closing database connections")
	if s.direct != nil {
		if err := s.direct.Close(); err != nil {
			log.Warnf("closing direct client: %v", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// Direct returns the raw query client.
func (s *GORMStore) Direct() *sql.DB {
	if s.direct != nil {
		return s.direct
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB
}

// HealthCheck pings the ORM pool.
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
