package domain

// Role is the coarse role carried in an access token.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Role      Role
	CompanyID string
}
