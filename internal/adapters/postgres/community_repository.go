package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

type communityRepository struct {
	db *gorm.DB
}

func (r *communityRepository) Create(ctx context.Context, community domain.Community) error {
	rec := communityModel{
		CommunityID: community.ID,
		Name:        community.Name,
		Type:        string(community.Type),
		CreatedAt:   community.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *communityRepository) GetByID(ctx context.Context, communityID string) (domain.Community, error) {
	var rec communityModel
	if err := r.db.WithContext(ctx).Where("community_id = ?", communityID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Community{}, domain.ErrNotFound
		}
		return domain.Community{}, err
	}
	return r.hydrate(ctx, rec)
}

func (r *communityRepository) ListAll(ctx context.Context) ([]domain.Community, error) {
	var rows []communityModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, rows)
}

func (r *communityRepository) ListVisibleTo(ctx context.Context, userID string) ([]domain.Community, error) {
	var rows []communityModel
	memberIDs := r.db.Model(&membershipModel{}).Select("community_id").Where("user_id = ?", userID)
	requestIDs := r.db.Model(&joinRequestModel{}).Select("community_id").Where("user_id = ?", userID)
	if err := r.db.WithContext(ctx).
		Where("type = ?", string(domain.CommunityPublic)).
		Or("community_id IN (?)", memberIDs).
		Or("community_id IN (?)", requestIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, rows)
}

func (r *communityRepository) GrantMembership(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&communityModel{}).Where("community_id = ?", communityID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		rec := membershipModel{
			CommunityID: communityID,
			UserID:      userID,
			GrantedAt:   time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
			return err
		}
		// An accepted member no longer needs a queued request.
		return tx.Where("community_id = ?", communityID).
			Where("user_id = ?", userID).
			Delete(&joinRequestModel{}).Error
	})
}

func (r *communityRepository) AppendJoinRequest(ctx context.Context, communityID string, request domain.JoinRequest) error {
	raw, err := json.Marshal(request.Credentials)
	if err != nil {
		return err
	}
	rec := joinRequestModel{
		CommunityID: communityID,
		UserID:      request.UserID,
		Credentials: string(raw),
		RequestedAt: request.RequestedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *communityRepository) hydrate(ctx context.Context, rec communityModel) (domain.Community, error) {
	var memberIDs []string
	if err := r.db.WithContext(ctx).
		Model(&membershipModel{}).
		Where("community_id = ?", rec.CommunityID).
		Order("granted_at ASC").
		Pluck("user_id", &memberIDs).Error; err != nil {
		return domain.Community{}, err
	}

	var requestRows []joinRequestModel
	if err := r.db.WithContext(ctx).
		Where("community_id = ?", rec.CommunityID).
		Order("requested_at ASC").
		Find(&requestRows).Error; err != nil {
		return domain.Community{}, err
	}
	requests := make([]domain.JoinRequest, 0, len(requestRows))
	for _, row := range requestRows {
		var credentials domain.Credentials
		if row.Credentials != "" {
			if err := json.Unmarshal([]byte(row.Credentials), &credentials); err != nil {
				return domain.Community{}, err
			}
		}
		requests = append(requests, domain.JoinRequest{
			UserID:      row.UserID,
			Credentials: credentials,
			RequestedAt: row.RequestedAt,
		})
	}

	return domain.Community{
		ID:           rec.CommunityID,
		Name:         rec.Name,
		Type:         domain.CommunityType(rec.Type),
		Members:      memberIDs,
		JoinRequests: requests,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (r *communityRepository) hydrateAll(ctx context.Context, rows []communityModel) ([]domain.Community, error) {
	result := make([]domain.Community, 0, len(rows))
	for _, row := range rows {
		item, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}
