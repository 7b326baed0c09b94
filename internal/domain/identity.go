package domain

// Identity is the caller of a service operation: a guest or an authenticated user.
// The zero value is a guest.
type Identity struct {
	userID string // Empty for guests
	role   Role   // Role of the authenticated user
}

// Guest returns the identity of an unauthenticated visitor
func Guest() Identity {
	return Identity{}
}

// Authenticated returns the identity of a signed-in user
func Authenticated(userID string, role Role) Identity {
	if userID == "" {
		return Guest()
	}
	return Identity{userID: userID, role: role}
}

// IsGuest reports whether the caller is unauthenticated
func (i Identity) IsGuest() bool { return i.userID == "" }

// UserID returns the caller's user id and whether one exists
func (i Identity) UserID() (string, bool) { return i.userID, i.userID != "" }

// Role returns the role claimed by the caller's token; guests have none.
// Authorization decisions read the stored role instead.
func (i Identity) Role() Role { return i.role }
