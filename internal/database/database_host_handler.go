package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"allowhost/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const hostInsertBatchSize = 500

var ErrNotInitialised = errors.New("database not initialised")

// HostRepository owns every read and write against the allowed_hosts table.
// It is safe for concurrent use; each call borrows a pooled connection.
type HostRepository struct {
	db *gorm.DB
}

func NewHostRepository(db *gorm.DB) *HostRepository {
	return &HostRepository{db: db}
}

func (r *HostRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, ErrNotInitialised
	}
	db := r.db
	if ctx != nil {
		db = db.WithContext(ctx)
	}
	return db, nil
}

// ExactMatches returns the stored hostnames equal to hostname (zero or one entry).
func (r *HostRepository) ExactMatches(ctx context.Context, hostname string) ([]string, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var hosts []domain.AllowedHost
	if err := db.
		Where("hostname = ?", hostname).
		Order("hostname ASC").
		Find(&hosts).Error; err != nil {
		return nil, fmt.Errorf("database: exact lookup: %w", err)
	}

	return domain.HostnamesOf(hosts), nil
}

// SuffixMatches returns stored hostnames that end with "."+parent, sorted
// lexicographically and cut to limit when limit > 0. parent itself never matches.
func (r *HostRepository) SuffixMatches(ctx context.Context, parent string, limit int) ([]string, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.
		Where(`hostname LIKE ? ESCAPE '\'`, "%."+escapeLike(parent)).
		Order("hostname ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var hosts []domain.AllowedHost
	if err := query.Find(&hosts).Error; err != nil {
		return nil, fmt.Errorf("database: suffix lookup: %w", err)
	}

	return domain.HostnamesOf(hosts), nil
}

// InsertHostnames stores hostnames that are not present yet and reports how many
// rows were actually added. Existing hostnames are left untouched.
func (r *HostRepository) InsertHostnames(ctx context.Context, hostnames []string) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	if len(hostnames) == 0 {
		return 0, nil
	}

	records := make([]domain.AllowedHost, 0, len(hostnames))
	for _, h := range hostnames {
		if h == "" {
			continue
		}
		records = append(records, domain.AllowedHost{Hostname: h})
	}
	if len(records) == 0 {
		return 0, nil
	}

	var inserted int64
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hostname"}},
			DoNothing: true,
		}).CreateInBatches(&records, hostInsertBatchSize)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("database: insert hostnames: %w", err)
	}

	return inserted, nil
}

func (r *HostRepository) CountHosts(ctx context.Context) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&domain.AllowedHost{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database: count hosts: %w", err)
	}
	return count, nil
}

func (r *HostRepository) Ping(ctx context.Context) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: get sql.DB: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return sqlDB.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match itself literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
