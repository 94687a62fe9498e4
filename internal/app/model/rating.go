package model

import (
	"time"
)

// Rating is a single user's score for a single store. The composite unique
// index guarantees at most one row per (user, store); re-rating overwrites
// the score and the timestamp in place, so CreatedAt doubles as the time of
// the most recent submission.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_store" json:"user_id"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_rating_user_store;index" json:"store_id"`
	Score     int       `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Store Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}

// RatingStats is the derived aggregate for a store, recomputed from
// committed rating rows on every read rather than maintained incrementally.
type RatingStats struct {
	Average   float64          `json:"average"`
	Total     int64            `json:"total"`
	Breakdown RatingBreakdown  `json:"breakdown"`
}

type RatingBreakdown struct {
	FiveStar  int64 `json:"five_star"`
	FourStar  int64 `json:"four_star"`
	ThreeStar int64 `json:"three_star"`
	TwoStar   int64 `json:"two_star"`
	OneStar   int64 `json:"one_star"`
}
