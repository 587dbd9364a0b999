package db

import (
	"errors"
	"fmt"
	"time"

	"rentbroker/internal/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB opens a MySQL connection pool for dbURL (a go-sql-driver DSN) and pings it.
func InitDB(dbURL string, log zerolog.Logger) (*gorm.DB, error) {
	cfg, err := mysqldriver.ParseDSN(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_URL: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil || cfg.Loc == time.Local {
		cfg.Loc = time.UTC
	}

	gdb, err := gorm.Open(mysql.New(mysql.Config{DSN: cfg.FormatDSN(), DSNConfig: cfg}), Config(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database is not responding: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Str("database", cfg.DBName).Msg("Connected to database")
	return gdb, nil
}

// Config is the gorm configuration shared by the service and the tests. Query failures and
// slow queries go to log.
func Config(log zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:         newQueryLogger(log),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func RunMigrations(gdb *gorm.DB, log zerolog.Logger) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Property{},
		&models.RentalApplication{},
		&models.ViewingRequest{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info().Msg("Migrations completed")
	return nil
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
