package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/observability"
)

// readingRow is the relational layout of a reading. Pollution columns are
// flattened under the pollution_ prefix.
type readingRow struct {
	ID        uint             `gorm:"primaryKey"`
	Latitude  float64          `gorm:"not null"`
	Longitude float64          `gorm:"not null"`
	Zone      string           `gorm:"not null;index"`
	Date      time.Time        `gorm:"not null"`
	Time      string           `gorm:"not null"`
	Pollution pollutionColumns `gorm:"embedded;embeddedPrefix:pollution_"`
}

type pollutionColumns struct {
	TS     time.Time `gorm:"column:ts"`
	AQIUS  int       `gorm:"column:aqius;not null"`
	MainUS string    `gorm:"column:mainus"`
	AQICN  int       `gorm:"column:aqicn;not null"`
	MainCN string    `gorm:"column:maincn"`
}

func (readingRow) TableName() string {
	return "air_qualities"
}

func toRow(r airquality.Reading) readingRow {
	return readingRow{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Zone:      r.Zone,
		Date:      r.Date.UTC(),
		Time:      r.Time,
		Pollution: pollutionColumns{
			TS:     r.Pollution.TS.UTC(),
			AQIUS:  r.Pollution.AQIUS,
			MainUS: r.Pollution.MainUS,
			AQICN:  r.Pollution.AQICN,
			MainCN: r.Pollution.MainCN,
		},
	}
}

func (row readingRow) toReading() airquality.Reading {
	return airquality.Reading{
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Zone:      row.Zone,
		Date:      row.Date.UTC(),
		Time:      row.Time,
		Pollution: airquality.PollutionRecord{
			TS:     row.Pollution.TS.UTC(),
			AQIUS:  row.Pollution.AQIUS,
			MainUS: row.Pollution.MainUS,
			AQICN:  row.Pollution.AQICN,
			MainCN: row.Pollution.MainCN,
		},
	}
}

// SQLiteStore persists readings in SQLite through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (and migrates) the database at path. ":memory:" gives
// a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating sqlite directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sqlite handle: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:" shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&readingRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert adds a reading row.
func (s *SQLiteStore) Insert(ctx context.Context, r airquality.Reading) (err error) {
	defer func(start time.Time) { observability.ObserveStore(BackendSQLite, "insert", start, err) }(time.Now())

	if err := r.Validate(); err != nil {
		return err
	}

	row := toRow(r)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return airquality.Persistence("inserting reading", err)
	}
	return nil
}

// FindMostPolluted returns the top reading of zone ordered by field, then
// provider timestamp, then insertion order, all descending.
func (s *SQLiteStore) FindMostPolluted(ctx context.Context, zone string, field airquality.PollutantField) (_ airquality.Reading, err error) {
	defer func(start time.Time) { observability.ObserveStore(BackendSQLite, "find_most_polluted", start, err) }(time.Now())

	if !field.Valid() {
		return airquality.Reading{}, airquality.InvalidArgument(airquality.MsgInvalidPollutant)
	}

	var row readingRow
	err = s.db.WithContext(ctx).
		Where("zone = ?", zone).
		Order("pollution_" + string(field) + " DESC").
		Order("pollution_ts DESC").
		Order("id DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return airquality.Reading{}, airquality.NoDataForZone(zone)
		}
		return airquality.Reading{}, airquality.Persistence("querying most polluted reading", err)
	}
	return row.toReading(), nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
