package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bilalafzal6349/ssc-system/internal/ports"
)

type Repositories struct {
	Users         ports.UserRepository
	Contributions ports.ContributionRepository
	Communities   ports.CommunityRepository
	TrustHistory  ports.TrustHistoryRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:         &userRepository{db: db},
		Contributions: &contributionRepository{db: db},
		Communities:   &communityRepository{db: db},
		TrustHistory:  &trustHistoryRepository{db: db},
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
