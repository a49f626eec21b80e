package domain

import "time"

type UserRole string

const (
	UserRoleSeeker   UserRole = "SEEKER"
	UserRoleProvider UserRole = "PROVIDER"
	UserRoleStaff    UserRole = "STAFF"
)

// User is the minimal account slice the payments core needs. Profile CRUD,
// search and session issuance live elsewhere.
type User struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Role              UserRole `json:"role"`
	SessionsCompleted int32    `json:"sessions_completed"`
	// CommissionRateBps overrides the platform-wide rate when set.
	CommissionRateBps *int32    `json:"commission_rate_bps,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
