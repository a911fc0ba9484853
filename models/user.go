package models

import "time"

// Staff roles. Office login is restricted to Admin and Office Staff; guards
// operate the front desk kiosk and have no dashboard login.
const (
	RoleSuperAdmin  = "Super Admin"
	RoleAdmin       = "Admin"
	RoleOfficeStaff = "Office Staff"
	RoleGuard       = "Guard"
)

// User is a staff account.
type User struct {
	UserID    string    `json:"userid" bson:"userid"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	Role      string    `json:"role" bson:"role"`
	Office    string    `json:"office,omitempty" bson:"office,omitempty"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// VisitorAccount is a self-service account for online appointment holders.
type VisitorAccount struct {
	AccountID     string    `json:"accountid" bson:"accountid"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"-" bson:"password"`
	ContactNumber string    `json:"contactNumber" bson:"contactNumber"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
