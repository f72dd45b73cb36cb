package entity

// Staff roles carried in access tokens
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleDoctor       = "doctor"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleReceptionist, RoleDoctor:
		return true
	}
	return false
}
