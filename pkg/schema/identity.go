// Package schema defines the records persisted by the dashboard and the key names they live under.
package schema

// Identity is the signed-in user a client acts as. It is supplied by the session collaborator
// and copied onto every audit-relevant record.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	JobTitle string `json:"jobTitle"`
	Role     string `json:"role,omitempty"`
}

// SystemIdentity authors entries the store writes on its own behalf.
var SystemIdentity = Identity{
	Username: "system",
	Name:     "System",
	JobTitle: "Automatic",
}

// IsZero reports whether no user is set.
func (i Identity) IsZero() bool { return i.Username == "" }

// OrSystem returns i, or SystemIdentity when i carries no username.
func (i Identity) OrSystem() Identity {
	if i.IsZero() {
		return SystemIdentity
	}
	return i
}
