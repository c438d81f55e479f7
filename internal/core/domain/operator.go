package domain

// RoleAdmin is the only role that receives operational alerts.
const RoleAdmin = "admin"

type Operator struct {
	ID       string
	Email    string
	FullName string
	Role     string
	Active   bool
}
