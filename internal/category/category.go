package category

// CategoryItem is the public DTO returned by the category API.
type CategoryItem struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
