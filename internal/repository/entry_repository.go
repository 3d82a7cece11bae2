package repository

import (
	"context"
	"time"

	"github.com/sjperalta/bitacora-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryRepository defines the interface for log entry data access.
// Every window query is half-open: start <= created_at < end.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.LogEntry) error
	FindByID(ctx context.Context, projectID, id uint) (*models.LogEntry, error)
	FindByWindow(ctx context.Context, projectID uint, start, end time.Time) ([]models.LogEntry, error)
	UpdateUnlocked(ctx context.Context, entry *models.LogEntry) (int64, error)
	DeleteUnlocked(ctx context.Context, projectID, id uint) (int64, error)
	LockWindow(ctx context.Context, projectID uint, start, end time.Time, lockedBy uint, lockedAt time.Time) (int64, error)
	CountInWindow(ctx context.Context, projectID uint, start, end time.Time) (int64, error)
	CountUnlocked(ctx context.Context, projectID uint, start, end time.Time) (int64, error)
	CountBySource(ctx context.Context, projectID uint) (map[string]int64, error)
}

type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new log entry repository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(entry).Error
}

func (r *entryRepository) FindByID(ctx context.Context, projectID, id uint) (*models.LogEntry, error) {
	var entry models.LogEntry
	err := conn(ctx, r.db).
		Preload("Author").
		Where("project_id = ?", projectID).
		First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) FindByWindow(ctx context.Context, projectID uint, start, end time.Time) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := conn(ctx, r.db).
		Preload("Author").
		Where("project_id = ? AND created_at >= ? AND created_at < ?", projectID, start.UTC(), end.UTC()).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// UpdateUnlocked rewrites title and content only while the entry is still unlocked.
// Zero rows affected means the entry was locked (or removed) in between.
func (r *entryRepository) UpdateUnlocked(ctx context.Context, entry *models.LogEntry) (int64, error) {
	result := conn(ctx, r.db).
		Model(&models.LogEntry{}).
		Where("id = ? AND project_id = ? AND is_locked = ?", entry.ID, entry.ProjectID, false).
		Updates(map[string]interface{}{
			"title":   entry.Title,
			"content": entry.Content,
		})
	return result.RowsAffected, result.Error
}

func (r *entryRepository) DeleteUnlocked(ctx context.Context, projectID, id uint) (int64, error) {
	result := conn(ctx, r.db).
		Where("id = ? AND project_id = ? AND is_locked = ?", id, projectID, false).
		Delete(&models.LogEntry{})
	return result.RowsAffected, result.Error
}

// LockWindow seals every unlocked entry of the window. Already locked rows are
// left untouched, so running it again is a no-op.
func (r *entryRepository) LockWindow(ctx context.Context, projectID uint, start, end time.Time, lockedBy uint, lockedAt time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Model(&models.LogEntry{}).
		Where("project_id = ? AND created_at >= ? AND created_at < ? AND is_locked = ?", projectID, start.UTC(), end.UTC(), false).
		Updates(map[string]interface{}{
			"is_locked": true,
			"locked_at": lockedAt.UTC(),
			"locked_by": lockedBy,
		})
	return result.RowsAffected, result.Error
}

func (r *entryRepository) CountInWindow(ctx context.Context, projectID uint, start, end time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.LogEntry{}).
		Where("project_id = ? AND created_at >= ? AND created_at < ?", projectID, start.UTC(), end.UTC()).
		Count(&count).Error
	return count, err
}

func (r *entryRepository) CountUnlocked(ctx context.Context, projectID uint, start, end time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.LogEntry{}).
		Where("project_id = ? AND created_at >= ? AND created_at < ? AND is_locked = ?", projectID, start.UTC(), end.UTC(), false).
		Count(&count).Error
	return count, err
}

func (r *entryRepository) CountBySource(ctx context.Context, projectID uint) (map[string]int64, error) {
	var rows []struct {
		Source string
		Total  int64
	}
	err := conn(ctx, r.db).
		Model(&models.LogEntry{}).
		Select("source, COUNT(*) AS total").
		Where("project_id = ?", projectID).
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(models.EntrySources))
	for _, s := range models.EntrySources {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Source] = row.Total
	}
	return counts, nil
}
