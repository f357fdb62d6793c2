package model

import "time"

// Sneaker is catalog reference data for sneaker_card messages and trade
// proposals.
type Sneaker struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Brand       string    `gorm:"size:120;not null" json:"brand"`
	Model       string    `gorm:"size:120;not null" json:"model"`
	Colorway    string    `gorm:"size:120" json:"colorway"`
	SKU         string    `gorm:"column:sku;size:64;uniqueIndex" json:"sku"`
	RetailPrice uint      `gorm:"column:retail_price" json:"retail_price"`
	ImageURL    *string   `gorm:"size:512" json:"image_url,omitempty"`
	ReleaseDate *time.Time `gorm:"column:release_date" json:"release_date,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Sneaker) TableName() string {
	return "sneakers"
}
