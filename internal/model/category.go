package model

// Category is a colored label referenced by todos and notes.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
