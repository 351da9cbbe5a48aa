package recommended

import "github.com/shopspring/decimal"

// RecommendedItem is the public DTO for the top-rated product listing.
type RecommendedItem struct {
	ProductID     int             `json:"productId"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Image         *string         `json:"image"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
}
