package domain

import "fmt"

// Scope is the (company, staff) pair against which overlap and locking are evaluated.
// StaffID 0 means the company-wide scope shared by bookings without staff.
type Scope struct {
	CompanyID int64
	StaffID   int64
}

func NewScope(companyID int64, staffID *int64) Scope {
	s := Scope{CompanyID: companyID}
	if staffID != nil {
		s.StaffID = *staffID
	}
	return s
}

// HasStaff reports whether the scope is bound to a staff member
func (s Scope) HasStaff() bool {
	return s.StaffID != 0
}

// StaffPtr returns nil for the company-wide scope
func (s Scope) StaffPtr() *int64 {
	if !s.HasStaff() {
		return nil
	}
	id := s.StaffID
	return &id
}

// Key is the stable textual key used for advisory locks
func (s Scope) Key() string {
	return fmt.Sprintf("booking-scope:%d:%d", s.CompanyID, s.StaffID)
}
