package domain

// Category is a distinct product category with its product count.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
