package models

// Admin "inherits" from User via embedding. The distinguishing field is Role,
// which is always "admin". Only the bootstrap flow produces one.
type Admin struct {
	User
}

// NewAdmin creates an admin model with Role preset to "admin".
func NewAdmin(username, passwordHash string) *Admin {
	return &Admin{User: User{Username: username, PasswordHash: passwordHash, Role: RoleAdmin}}
}
