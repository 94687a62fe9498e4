package service

import (
	"errors"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrNoUpdateFields = errors.New("no fields provided for update")

const ownerRecentRatings = 5

// OwnerStore is one of the caller's stores with full statistics and its
// most recent ratings.
type OwnerStore struct {
	ID            uint                      `json:"id"`
	Name          string                    `json:"name"`
	Address       string                    `json:"address"`
	Stats         model.RatingStats         `json:"rating"`
	RecentRatings []repository.RecentRating `json:"recent_ratings"`
}

// OwnerRatingsPage is the paginated rater list for one owned store
type OwnerRatingsPage struct {
	Store   *model.Store
	Ratings []repository.RatingWithUser
	Stats   *model.RatingStats
	Total   int64
}

type OwnerService interface {
	ListMyStores(ownerID uint) ([]OwnerStore, error)
	GetStoreRatings(ownerID, storeID uint, page, limit int) (*OwnerRatingsPage, error)
	UpdateStore(ownerID, storeID uint, name, address string) (*model.Store, error)
}

type ownerService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewOwnerService(storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) OwnerService {
	return &ownerService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *ownerService) ListMyStores(ownerID uint) ([]OwnerStore, error) {
	rows, err := s.storeRepo.ListByOwner(ownerID)
	if err != nil {
		logger.Error("Failed to list owned stores", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}

	stores := make([]OwnerStore, 0, len(rows))
	for _, row := range rows {
		recent, err := s.ratingRepo.RecentByStore(row.ID, ownerRecentRatings)
		if err != nil {
			return nil, err
		}
		stores = append(stores, OwnerStore{
			ID:      row.ID,
			Name:    row.Name,
			Address: row.Address,
			Stats: model.RatingStats{
				Average: row.AverageRating,
				Total:   row.TotalRatings,
				Breakdown: model.RatingBreakdown{
					FiveStar:  row.FiveStar,
					FourStar:  row.FourStar,
					ThreeStar: row.ThreeStar,
					TwoStar:   row.TwoStar,
					OneStar:   row.OneStar,
				},
			},
			RecentRatings: recent,
		})
	}

	return stores, nil
}

// GetStoreRatings verifies ownership before anything else. A store owned by
// someone else is reported as not found, never as forbidden, so the caller
// cannot probe which store ids exist.
func (s *ownerService) GetStoreRatings(ownerID, storeID uint, page, limit int) (*OwnerRatingsPage, error) {
	store, err := s.storeRepo.FindOwned(storeID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Ratings request for store not owned by caller", map[string]interface{}{
				"owner_id": ownerID,
				"store_id": storeID,
			})
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	ratings, total, err := s.ratingRepo.ListByStore(storeID, offset, limit)
	if err != nil {
		return nil, err
	}

	stats, err := s.ratingRepo.Stats(storeID)
	if err != nil {
		return nil, err
	}

	return &OwnerRatingsPage{
		Store:   store,
		Ratings: ratings,
		Stats:   stats,
		Total:   total,
	}, nil
}

func (s *ownerService) UpdateStore(ownerID, storeID uint, name, address string) (*model.Store, error) {
	if name == "" && address == "" {
		return nil, ErrNoUpdateFields
	}

	store, err := s.storeRepo.FindOwned(storeID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if name != "" {
		store.Name = name
	}
	if address != "" {
		store.Address = address
	}

	if err := s.storeRepo.Update(store); err != nil {
		logger.Error("Failed to update store", err, map[string]interface{}{
			"store_id": storeID,
			"owner_id": ownerID,
		})
		return nil, err
	}

	logger.Info("Store updated by owner", map[string]interface{}{
		"store_id": storeID,
		"owner_id": ownerID,
	})
	return store, nil
}
