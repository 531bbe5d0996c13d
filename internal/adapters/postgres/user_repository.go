package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user domain.User) error {
	rec := userModel{
		UserID:       user.ID,
		Role:         string(user.Role),
		TrustScore:   user.TrustScore,
		TrustVersion: user.TrustVersion,
		GithubHandle: user.GithubHandle,
		ContactInfo:  user.ContactInfo,
		CreatedAt:    user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	var communityIDs []string
	if err := r.db.WithContext(ctx).
		Model(&membershipModel{}).
		Where("user_id = ?", userID).
		Order("granted_at ASC").
		Pluck("community_id", &communityIDs).Error; err != nil {
		return domain.User{}, err
	}

	var voteRows []userVoteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("cast_at ASC").
		Find(&voteRows).Error; err != nil {
		return domain.User{}, err
	}
	votes := make([]domain.Vote, 0, len(voteRows))
	for _, row := range voteRows {
		votes = append(votes, domain.Vote{
			Vote:    domain.VoteChoice(row.Vote),
			Reason:  row.Reason,
			VoterID: row.VoterID,
			CastAt:  row.CastAt,
		})
	}

	role, _ := domain.NormalizeRole(rec.Role)
	return domain.User{
		ID:           rec.UserID,
		Role:         role,
		TrustScore:   rec.TrustScore,
		TrustVersion: rec.TrustVersion,
		Communities:  communityIDs,
		Votes:        votes,
		GithubHandle: rec.GithubHandle,
		ContactInfo:  rec.ContactInfo,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (r *userRepository) UpdateTrustScore(ctx context.Context, userID string, score float64, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Where("trust_version = ?", expectedVersion).
		Updates(map[string]any{
			"trust_score":   score,
			"trust_version": gorm.Expr("trust_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&userModel{}).Where("user_id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *userRepository) AppendVote(ctx context.Context, userID string, vote domain.Vote) error {
	rec := userVoteModel{
		UserID:  userID,
		Vote:    string(vote.Vote),
		Reason:  vote.Reason,
		VoterID: vote.VoterID,
		CastAt:  vote.CastAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
