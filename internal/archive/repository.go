package archive

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/screentime/screentime/internal/models"
)

// Repository handles all database operations for focus samples.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateSample inserts one counted tick. App names are stored lowercased so
// aggregation is case-insensitive.
func (r *Repository) CreateSample(sample *models.FocusSample) error {
	sample.AppName = strings.ToLower(sample.AppName)
	if result := r.db.Create(sample); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert focus sample")
	}
	return nil
}

// SamplesSince returns all samples recorded at or after the given time,
// oldest first.
func (r *Repository) SamplesSince(since time.Time) ([]*models.FocusSample, error) {
	var samples []*models.FocusSample
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&samples)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query focus samples")
	}
	return samples, nil
}

// AppSummarySince returns per-app aggregated usage since a given time.
// SQL does the SUM; derived fields are filled in by the reporter.
func (r *Repository) AppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary
	result := r.db.Model(&models.FocusSample{}).
		Select("app_name, SUM(seconds) as total_seconds, COUNT(*) as sample_count").
		Where("timestamp >= ?", since).
		Group("app_name").
		Order("total_seconds DESC").
		Scan(&summaries)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app summary")
	}
	return summaries, nil
}

// LatestSample returns the most recent sample, or nil when the archive is
// empty.
func (r *Repository) LatestSample() (*models.FocusSample, error) {
	var sample models.FocusSample
	result := r.db.Order("timestamp DESC").First(&sample)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest sample")
	}
	return &sample, nil
}

// PruneBefore deletes samples older than the given time.
func (r *Repository) PruneBefore(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.FocusSample{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to prune old samples")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog records a daemon-side failure.
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if result := r.db.Create(errorLog); result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all samples and error logs.
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM focus_samples"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear focus samples")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
