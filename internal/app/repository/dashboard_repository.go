package repository

import (
	"math"
	"time"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"gorm.io/gorm"
)

// DashboardStats is the read-only aggregate behind the admin dashboard
type DashboardStats struct {
	TotalUsers    int64            `json:"total_users"`
	TotalStores   int64            `json:"total_stores"`
	TotalRatings  int64            `json:"total_ratings"`
	AverageRating float64          `json:"average_rating"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
	RecentUsers   int64            `json:"recent_users"`   // created in the trailing 7 days
	RecentStores  int64            `json:"recent_stores"`
	RecentRatings int64            `json:"recent_ratings"`
}

type DashboardRepository interface {
	GetStatistics() (*DashboardStats, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) GetStatistics() (*DashboardStats, error) {
	stats := &DashboardStats{
		UsersByRole: make(map[string]int64),
	}

	if err := r.db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Store{}).Count(&stats.TotalStores).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Rating{}).Count(&stats.TotalRatings).Error; err != nil {
		return nil, err
	}

	var roleRows []struct {
		Role  string
		Count int64
	}
	if err := r.db.Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roleRows).Error; err != nil {
		return nil, err
	}
	for _, row := range roleRows {
		stats.UsersByRole[row.Role] = row.Count
	}

	var avg float64
	if err := r.db.Model(&model.Rating{}).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AverageRating = math.Round(avg*100) / 100

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := r.db.Model(&model.User{}).
		Where("created_at >= ?", weekAgo).
		Count(&stats.RecentUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Store{}).
		Where("created_at >= ?", weekAgo).
		Count(&stats.RecentStores).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Rating{}).
		Where("created_at >= ?", weekAgo).
		Count(&stats.RecentRatings).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
