package address

import "time"

const DefaultCountry = "India"

type Address struct {
	ID        int       `json:"addressId"`
	UserID    int       `json:"userId"`
	Label     string    `json:"label"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries writable fields; nil fields are left unchanged on update.
type Input struct {
	Label     *string `json:"label,omitempty"`
	Street    *string `json:"street,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Pincode   *string `json:"pincode,omitempty"`
	Country   *string `json:"country,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}
