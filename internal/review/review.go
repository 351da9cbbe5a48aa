package review

import "time"

const (
	MaxImages = 5
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        int       `json:"reviewId"`
	UserID    int       `json:"userId"`
	ProductID int       `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Input struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// Stats is the aggregate of every review of one product.
type Stats struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"reviewCount"`
}
