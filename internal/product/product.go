package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxImages = 6

// AllowedCategories contains the supported juice categories used across the app.
var AllowedCategories = []string{
	"detox",
	"vitamin",
	"energy",
	"protein",
	"weight-loss",
	"immunity",
	"hydration",
	"antioxidant",
	"fitness",
	"skin",
	"digestive",
}

func IsCategory(s string) bool {
	for _, c := range AllowedCategories {
		if c == s {
			return true
		}
	}
	return false
}

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type Product struct {
	ID            int             `json:"productId"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Ingredients   []Ingredient    `json:"ingredients"`
	Benefits      []string        `json:"benefits"`
	Images        []string        `json:"images"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Input carries the writable fields of a product. Nil fields are left unchanged
// on update.
type Input struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Ingredients *[]Ingredient    `json:"ingredients,omitempty"`
	Benefits    *[]string        `json:"benefits,omitempty"`
}

type Filter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

// StockRequest asks for Quantity units of ProductID.
type StockRequest struct {
	ProductID int
	Quantity  int
}
