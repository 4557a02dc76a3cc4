package models

import "fmt"

// Product represents a sellable product in the catalog
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// Category represents a product grouping shown on the order screen
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidateProduct validates a product before it enters the catalog
func ValidateProduct(p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Category == "" {
		return fmt.Errorf("product category is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("product price must not be negative")
	}
	return nil
}
