package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

type contributionRepository struct {
	db *gorm.DB
}

func (r *contributionRepository) Create(ctx context.Context, contribution domain.Contribution) error {
	rec := contributionModel{
		ContributionID:    contribution.ID,
		AuthorID:          contribution.AuthorID,
		Repository:        contribution.Repository,
		ExternalChangeRef: contribution.ExternalChangeRef,
		Status:            string(contribution.Status),
		Description:       contribution.Description,
		CreatedAt:         contribution.CreatedAt,
		ValidatedAt:       contribution.ValidatedAt,
	}
	if contribution.Feedback != nil {
		raw, err := json.Marshal(contribution.Feedback)
		if err != nil {
			return err
		}
		body := string(raw)
		rec.Feedback = &body
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *contributionRepository) GetByID(ctx context.Context, contributionID string) (domain.Contribution, error) {
	var rec contributionModel
	if err := r.db.WithContext(ctx).Where("contribution_id = ?", contributionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Contribution{}, domain.ErrNotFound
		}
		return domain.Contribution{}, err
	}
	return r.hydrate(ctx, rec)
}

func (r *contributionRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]domain.Contribution, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&contributionModel{}).
		Where("author_id = ?", authorID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []contributionModel
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]domain.Contribution, 0, len(rows))
	for _, row := range rows {
		item, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, item)
	}
	return result, int(total), nil
}

func (r *contributionRepository) SetOutcome(ctx context.Context, contributionID string, status domain.ContributionStatus, feedback domain.Feedback, at time.Time) error {
	raw, err := json.Marshal(feedback)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&contributionModel{}).
		Where("contribution_id = ?", contributionID).
		Updates(map[string]any{
			"status":       string(status),
			"feedback":     string(raw),
			"validated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *contributionRepository) AppendFlag(ctx context.Context, contributionID string, flag domain.Flag) error {
	rec := contributionFlagModel{
		ContributionID: contributionID,
		Reason:         flag.Reason,
		FlaggedBy:      flag.FlaggedBy,
		FlaggedAt:      flag.FlaggedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *contributionRepository) hydrate(ctx context.Context, rec contributionModel) (domain.Contribution, error) {
	var flagRows []contributionFlagModel
	if err := r.db.WithContext(ctx).
		Where("contribution_id = ?", rec.ContributionID).
		Order("flagged_at ASC").
		Find(&flagRows).Error; err != nil {
		return domain.Contribution{}, err
	}
	flags := make([]domain.Flag, 0, len(flagRows))
	for _, row := range flagRows {
		flags = append(flags, domain.Flag{
			Reason:    row.Reason,
			FlaggedBy: row.FlaggedBy,
			FlaggedAt: row.FlaggedAt,
		})
	}

	out := domain.Contribution{
		ID:                rec.ContributionID,
		AuthorID:          rec.AuthorID,
		Repository:        rec.Repository,
		ExternalChangeRef: rec.ExternalChangeRef,
		Status:            domain.ContributionStatus(rec.Status),
		Description:       rec.Description,
		Flags:             flags,
		CreatedAt:         rec.CreatedAt,
		ValidatedAt:       rec.ValidatedAt,
	}
	if rec.Feedback != nil && *rec.Feedback != "" {
		var feedback domain.Feedback
		if err := json.Unmarshal([]byte(*rec.Feedback), &feedback); err != nil {
			return domain.Contribution{}, err
		}
		out.Feedback = &feedback
	}
	return out, nil
}
