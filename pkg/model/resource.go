package model

// Resource is a shared, exclusive-use resource such as a bay or facility.
// Capacity is carried for display purposes only: overlap semantics are
// single-occupant regardless of its value.
type Resource struct {
	ID           string `json:"id,omitempty" validate:"omitempty"`
	Name         string `json:"name" validate:"required,min=1,max=100"`
	ResourceType string `json:"resource_type" validate:"required,min=1,max=50"`
	Capacity     int    `json:"capacity" validate:"omitempty,min=1"`
}
