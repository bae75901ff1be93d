package domain

import "time"

// Service is a bookable offering of a company.
// Only the duration matters for scheduling; name is kept for read models.
type Service struct {
	ID              int64
	CompanyID       int64
	Name            string
	DurationMinutes int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Company is the tenant as seen by the scheduling core
type Company struct {
	ID         int64
	Name       string
	IsActive   bool
	ManagerIDs []int64
}

// IsManager reports whether userID manages the company
func (c *Company) IsManager(userID int64) bool {
	for _, id := range c.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
