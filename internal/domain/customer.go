package domain

import "strings"

// Customer is the owner of recurring schedules
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
}

// FullName returns "First Last" without dangling spaces
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
