package repository

import (
	"math"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreListFilter holds validated store listing parameters. Name/Address
// are the public per-field filters; Search and OwnerName are the admin
// variants. A zero MinRating disables the post-aggregation threshold.
type StoreListFilter struct {
	Name      string
	Address   string
	Search    string  // matches name OR address
	OwnerName string
	MinRating float64 // HAVING threshold on the computed average
	SortBy    string  // resolved column expression
	SortOrder string  // ASC or DESC
	Page      int
	Limit     int
}

// StoreSummary is one aggregated row of a store listing
type StoreSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	OwnerID       uint    `json:"owner_id"`
	OwnerName     string  `json:"owner_name"`
	OwnerEmail    string  `json:"owner_email"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}

// OwnerStoreRow is a store owned by the caller with its full per-star
// breakdown, for the owner dashboard.
type OwnerStoreRow struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
	FiveStar      int64   `json:"five_star"`
	FourStar      int64   `json:"four_star"`
	ThreeStar     int64   `json:"three_star"`
	TwoStar       int64   `json:"two_star"`
	OneStar       int64   `json:"one_star"`
}

type StoreRepository interface {
	Create(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindOwned(storeID, ownerID uint) (*model.Store, error)
	Update(store *model.Store) error
	DeleteCascade(id uint) error
	List(filter StoreListFilter) ([]StoreSummary, int64, error)
	ListAll() ([]StoreSummary, error)
	ListByOwner(ownerID uint) ([]OwnerStoreRow, error)
	GetSummary(id uint) (*StoreSummary, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":     store.Name,
			"owner_id": store.OwnerID,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindOwned loads a store only when it belongs to ownerID. A store owned by
// someone else surfaces as ErrRecordNotFound so ownership is never leaked.
func (r *storeRepository) FindOwned(storeID, ownerID uint) (*model.Store, error) {
	var store model.Store
	err := r.db.Where("id = ? AND owner_id = ?", storeID, ownerID).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) Update(store *model.Store) error {
	return r.db.Save(store).Error
}

// DeleteCascade removes a store and its ratings in one transaction
func (r *storeRepository) DeleteCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&model.Rating{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Store{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		logger.Info("Store deleted with ratings", map[string]interface{}{
			"store_id": id,
		})
		return nil
	})
}

// baseAggQuery joins stores to their owner and ratings, applies the filter
// predicates, and groups per store. The count query and the data query are
// both built from this one assembly so the minRating HAVING predicate can
// never diverge between them; otherwise pagination totals would disagree
// with the returned rows.
func (r *storeRepository) baseAggQuery(filter StoreListFilter) *gorm.DB {
	query := r.db.Model(&model.Store{}).
		Joins("LEFT JOIN users ON users.id = stores.owner_id").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id")

	if filter.Name != "" {
		query = query.Where("LOWER(stores.name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}
	if filter.Address != "" {
		query = query.Where("LOWER(stores.address) LIKE LOWER(?)", "%"+filter.Address+"%")
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("LOWER(stores.name) LIKE LOWER(?) OR LOWER(stores.address) LIKE LOWER(?)", term, term)
	}
	if filter.OwnerName != "" {
		query = query.Where("LOWER(users.name) LIKE LOWER(?)", "%"+filter.OwnerName+"%")
	}

	query = query.
		Select("stores.id, stores.name, stores.address, stores.owner_id, " +
			"users.name AS owner_name, users.email AS owner_email, " +
			"COALESCE(AVG(ratings.score), 0) AS average_rating, COUNT(ratings.id) AS total_ratings").
		Group("stores.id, users.id")

	if filter.MinRating > 0 {
		query = query.Having("COALESCE(AVG(ratings.score), 0) >= ?", filter.MinRating)
	}

	return query
}

func (r *storeRepository) List(filter StoreListFilter) ([]StoreSummary, int64, error) {
	var total int64
	if err := r.db.
		Table("(?) AS filtered_stores", r.baseAggQuery(filter)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit

	var stores []StoreSummary
	err := r.baseAggQuery(filter).
		Order(filter.SortBy + " " + filter.SortOrder).
		Offset(offset).
		Limit(filter.Limit).
		Scan(&stores).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range stores {
		stores[i].AverageRating = math.Round(stores[i].AverageRating*100) / 100
	}

	return stores, total, nil
}

// ListAll returns every store with aggregates, used by the admin export
func (r *storeRepository) ListAll() ([]StoreSummary, error) {
	var stores []StoreSummary
	err := r.baseAggQuery(StoreListFilter{}).
		Order("stores.id ASC").
		Scan(&stores).Error
	if err != nil {
		return nil, err
	}
	for i := range stores {
		stores[i].AverageRating = math.Round(stores[i].AverageRating*100) / 100
	}
	return stores, nil
}

func (r *storeRepository) ListByOwner(ownerID uint) ([]OwnerStoreRow, error) {
	var stores []OwnerStoreRow
	err := r.db.Model(&model.Store{}).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Where("stores.owner_id = ?", ownerID).
		Select("stores.id, stores.name, stores.address, " +
			"COALESCE(AVG(ratings.score), 0) AS average_rating, COUNT(ratings.id) AS total_ratings, " +
			"COUNT(CASE WHEN ratings.score = 5 THEN 1 END) AS five_star, " +
			"COUNT(CASE WHEN ratings.score = 4 THEN 1 END) AS four_star, " +
			"COUNT(CASE WHEN ratings.score = 3 THEN 1 END) AS three_star, " +
			"COUNT(CASE WHEN ratings.score = 2 THEN 1 END) AS two_star, " +
			"COUNT(CASE WHEN ratings.score = 1 THEN 1 END) AS one_star").
		Group("stores.id").
		Order("stores.name ASC").
		Scan(&stores).Error
	if err != nil {
		return nil, err
	}
	for i := range stores {
		stores[i].AverageRating = math.Round(stores[i].AverageRating*100) / 100
	}
	return stores, nil
}

// GetSummary loads a single store with owner info and aggregates
func (r *storeRepository) GetSummary(id uint) (*StoreSummary, error) {
	var summary StoreSummary
	err := r.db.Model(&model.Store{}).
		Joins("LEFT JOIN users ON users.id = stores.owner_id").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Where("stores.id = ?", id).
		Select("stores.id, stores.name, stores.address, stores.owner_id, "+
			"users.name AS owner_name, users.email AS owner_email, "+
			"COALESCE(AVG(ratings.score), 0) AS average_rating, COUNT(ratings.id) AS total_ratings").
		Group("stores.id, users.id").
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	summary.AverageRating = math.Round(summary.AverageRating*100) / 100
	return &summary, nil
}
