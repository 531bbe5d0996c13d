package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

type trustHistoryRepository struct {
	db *gorm.DB
}

func (r *trustHistoryRepository) Append(ctx context.Context, entry domain.TrustHistoryEntry) error {
	rec := trustHistoryModel{
		EntryID:   entry.ID,
		UserID:    entry.UserID,
		Score:     entry.Score,
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *trustHistoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.TrustHistoryEntry, error) {
	var rows []trustHistoryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.TrustHistoryEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.TrustHistoryEntry{
			ID:        row.EntryID,
			UserID:    row.UserID,
			Score:     row.Score,
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}
