package repository

import (
	"errors"
	"math"
	"time"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"gorm.io/gorm"
)

// RatingWithUser is one rating row joined with its rater, for the owner's
// paginated rating list.
type RatingWithUser struct {
	ID        uint      `json:"id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
}

// RecentRating is a rating with the rater's name, for public store detail
// and the owner dashboard.
type RecentRating struct {
	Score     int       `json:"score"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

type RatingRepository interface {
	Upsert(userID, storeID uint, score int) (created bool, stats *model.RatingStats, err error)
	FindByUserAndStore(userID, storeID uint) (*model.Rating, error)
	ScoresForStores(userID uint, storeIDs []uint) (map[uint]int, error)
	Stats(storeID uint) (*model.RatingStats, error)
	ListByStore(storeID uint, offset, limit int) ([]RatingWithUser, int64, error)
	RecentByStore(storeID uint, limit int) ([]RecentRating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert submits a rating inside one atomic transaction: verify the store
// exists, then insert a new row or overwrite the caller's existing row for
// that store, then recompute the store's aggregate from committed rows.
// The read-before-write decides insert vs update; the unique index on
// (user_id, store_id) is the backstop should two submissions race.
// Returns gorm.ErrRecordNotFound when the store does not exist, with the
// ratings table untouched.
func (r *ratingRepository) Upsert(userID, storeID uint, score int) (bool, *model.RatingStats, error) {
	var created bool
	var stats *model.RatingStats

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var store model.Store
		if err := tx.Select("id").First(&store, storeID).Error; err != nil {
			return err
		}

		var rating model.Rating
		err := tx.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = model.Rating{
				UserID:    userID,
				StoreID:   storeID,
				Score:     score,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			// Same row, same id; the timestamp moves to the new submission
			rating.Score = score
			rating.CreatedAt = time.Now()
			if err := tx.Save(&rating).Error; err != nil {
				return err
			}
		}

		fresh, err := statsQuery(tx, storeID)
		if err != nil {
			return err
		}
		stats = fresh
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	logger.Debug("Rating upserted", map[string]interface{}{
		"user_id":  userID,
		"store_id": storeID,
		"score":    score,
		"created":  created,
	})
	return created, stats, nil
}

func (r *ratingRepository) FindByUserAndStore(userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ScoresForStores returns the user's scores keyed by store id, for
// decorating listings with the viewer's own ratings.
func (r *ratingRepository) ScoresForStores(userID uint, storeIDs []uint) (map[uint]int, error) {
	scores := make(map[uint]int)
	if len(storeIDs) == 0 {
		return scores, nil
	}

	var rows []model.Rating
	err := r.db.
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		scores[row.StoreID] = row.Score
	}
	return scores, nil
}

func (r *ratingRepository) Stats(storeID uint) (*model.RatingStats, error) {
	return statsQuery(r.db, storeID)
}

// statsQuery scans all rating rows for a store in one aggregate pass. A
// direct query rather than a maintained counter: statistics always reflect
// committed state.
func statsQuery(db *gorm.DB, storeID uint) (*model.RatingStats, error) {
	var row struct {
		Average   float64
		Total     int64
		FiveStar  int64
		FourStar  int64
		ThreeStar int64
		TwoStar   int64
		OneStar   int64
	}

	err := db.Model(&model.Rating{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS total, " +
			"COUNT(CASE WHEN score = 5 THEN 1 END) AS five_star, " +
			"COUNT(CASE WHEN score = 4 THEN 1 END) AS four_star, " +
			"COUNT(CASE WHEN score = 3 THEN 1 END) AS three_star, " +
			"COUNT(CASE WHEN score = 2 THEN 1 END) AS two_star, " +
			"COUNT(CASE WHEN score = 1 THEN 1 END) AS one_star").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &model.RatingStats{
		Average: math.Round(row.Average*100) / 100,
		Total:   row.Total,
		Breakdown: model.RatingBreakdown{
			FiveStar:  row.FiveStar,
			FourStar:  row.FourStar,
			ThreeStar: row.ThreeStar,
			TwoStar:   row.TwoStar,
			OneStar:   row.OneStar,
		},
	}, nil
}

func (r *ratingRepository) ListByStore(storeID uint, offset, limit int) ([]RatingWithUser, int64, error) {
	var total int64
	err := r.db.Model(&model.Rating{}).
		Where("store_id = ?", storeID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var ratings []RatingWithUser
	err = r.db.Model(&model.Rating{}).
		Joins("INNER JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Select("ratings.id, ratings.score, ratings.created_at, users.id AS user_id, users.name AS user_name, users.email AS user_email").
		Order("ratings.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&ratings).Error
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

func (r *ratingRepository) RecentByStore(storeID uint, limit int) ([]RecentRating, error) {
	var ratings []RecentRating
	err := r.db.Model(&model.Rating{}).
		Joins("INNER JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Select("ratings.score, users.name AS user_name, ratings.created_at").
		Order("ratings.created_at DESC").
		Limit(limit).
		Scan(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
