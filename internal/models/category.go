package models

import "strings"

// Category is a shared, named grouping for expenses.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewCategory builds a Category with a trimmed, non-empty name. The ID is
// assigned when the category is persisted.
func NewCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, invalid("name", "O nome da categoria não pode ser vazio")
	}
	return Category{Name: name}, nil
}
