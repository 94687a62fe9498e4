package service

import (
	"errors"
	"strings"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidScore   = errors.New("rating score must be between 1 and 5")
	ErrRatingConflict = errors.New("rating submission conflicted, please retry")
)

// SubmitResult reports whether the submission created a new rating or
// overwrote an existing one, plus the fresh aggregate for the store.
type SubmitResult struct {
	Created bool
	Stats   *model.RatingStats
}

type RatingService interface {
	SubmitRating(userID, storeID uint, score int) (*SubmitResult, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
}

func NewRatingService(ratingRepo repository.RatingRepository) RatingService {
	return &ratingService{ratingRepo: ratingRepo}
}

// SubmitRating applies the one-rating-per-(user,store) upsert. The whole
// operation runs in a single transaction in the repository; on any failure
// inside it the transaction rolls back and no partial state is observable.
func (s *ratingService) SubmitRating(userID, storeID uint, score int) (*SubmitResult, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}

	created, stats, err := s.ratingRepo.Upsert(userID, storeID, score)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Rating rejected: store not found", map[string]interface{}{
				"user_id":  userID,
				"store_id": storeID,
			})
			return nil, ErrStoreNotFound
		}
		// Two near-simultaneous first ratings from the same user can race;
		// the unique index turns the loser into a conflict the caller may
		// simply resubmit, which then lands as an update.
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
			logger.Warn("Rating upsert lost a write race", map[string]interface{}{
				"user_id":  userID,
				"store_id": storeID,
			})
			return nil, ErrRatingConflict
		}
		logger.Error("Failed to submit rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return nil, err
	}

	logger.Info("Rating submitted", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
		"score":    score,
		"created":  created,
	})

	return &SubmitResult{Created: created, Stats: stats}, nil
}
