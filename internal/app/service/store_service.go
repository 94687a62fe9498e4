package service

import (
	"errors"

	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrStoreNotFound = errors.New("store not found")

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	recentRatingsMax = 10
)

// StoreListParams are the public directory query parameters after boundary
// validation. SortBy is raw request input here; unknown keys silently fall
// back to name when resolved against the allow-list.
type StoreListParams struct {
	Name      string
	Address   string
	MinRating float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// StoreListItem is one public directory entry. UserScore carries the
// viewer's own rating when authenticated and rated, else nil.
type StoreListItem struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
	UserScore     *int    `json:"user_score,omitempty"`
}

// StoreListResult carries a page of stores plus the resolved sorting,
// echoed back so clients see which sort actually applied.
type StoreListResult struct {
	Stores    []StoreListItem
	Total     int64
	SortBy    string
	SortOrder string
}

// StoreDetail is the full public view of one store
type StoreDetail struct {
	Summary       *repository.StoreSummary
	UserRating    *UserRating
	RecentRatings []repository.RecentRating
}

type UserRating struct {
	Score     int    `json:"score"`
	CreatedAt string `json:"created_at"`
}

type StoreService interface {
	ListStores(params StoreListParams, viewerID *uint) (*StoreListResult, error)
	GetStoreDetail(storeID uint, viewerID *uint) (*StoreDetail, error)
}

type storeService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewStoreService(storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) StoreService {
	return &storeService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func (s *storeService) ListStores(params StoreListParams, viewerID *uint) (*StoreListResult, error) {
	page, limit := normalizePage(params.Page, params.Limit)
	sortColumn, sortKey, sortOrder := repository.ResolveSort(
		repository.PublicStoreSortColumns, params.SortBy, params.SortOrder, "name")

	summaries, total, err := s.storeRepo.List(repository.StoreListFilter{
		Name:      params.Name,
		Address:   params.Address,
		MinRating: params.MinRating,
		SortBy:    sortColumn,
		SortOrder: sortOrder,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		logger.Error("Failed to list stores", err, map[string]interface{}{
			"sort_by": sortKey,
		})
		return nil, err
	}

	stores := make([]StoreListItem, 0, len(summaries))
	for _, summary := range summaries {
		stores = append(stores, StoreListItem{
			ID:            summary.ID,
			Name:          summary.Name,
			Address:       summary.Address,
			AverageRating: summary.AverageRating,
			TotalRatings:  summary.TotalRatings,
		})
	}

	// The viewer's own ratings are looked up separately and never block the
	// anonymous case.
	if viewerID != nil && len(stores) > 0 {
		storeIDs := make([]uint, len(stores))
		for i := range stores {
			storeIDs[i] = stores[i].ID
		}
		scores, err := s.ratingRepo.ScoresForStores(*viewerID, storeIDs)
		if err != nil {
			logger.Warn("Failed to load viewer ratings, continuing without them", map[string]interface{}{
				"user_id": *viewerID,
				"error":   err.Error(),
			})
		} else {
			for i := range stores {
				if score, ok := scores[stores[i].ID]; ok {
					sc := score
					stores[i].UserScore = &sc
				}
			}
		}
	}

	return &StoreListResult{
		Stores:    stores,
		Total:     total,
		SortBy:    sortKey,
		SortOrder: sortOrder,
	}, nil
}

func (s *storeService) GetStoreDetail(storeID uint, viewerID *uint) (*StoreDetail, error) {
	summary, err := s.storeRepo.GetSummary(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	detail := &StoreDetail{Summary: summary}

	if viewerID != nil {
		rating, err := s.ratingRepo.FindByUserAndStore(*viewerID, storeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Failed to load viewer rating, continuing without it", map[string]interface{}{
				"user_id":  *viewerID,
				"store_id": storeID,
				"error":    err.Error(),
			})
		} else if rating != nil {
			detail.UserRating = &UserRating{
				Score:     rating.Score,
				CreatedAt: rating.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		}
	}

	recent, err := s.ratingRepo.RecentByStore(storeID, recentRatingsMax)
	if err != nil {
		return nil, err
	}
	detail.RecentRatings = recent

	return detail, nil
}
