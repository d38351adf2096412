package domains

import "time"

// OptionDTO represents a domain option for dropdown selection
type OptionDTO struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	PulledAt  *string   `json:"pulledAt"`
	CreatedAt time.Time `json:"createdAt"`
}
