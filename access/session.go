// Package access decides who may read what. A Session carries the caller's
// identity and resolved role; a Gate turns a Session into the one store query
// the caller is allowed to run, and LiveQuery keeps that query subscribed as
// the Session changes.
package access

// Identity is an authenticated principal.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Anonymous   bool   `json:"anonymous"`
}

// Name is the label shown next to things the identity writes.
func (id Identity) Name() string {
	switch {
	case id.DisplayName != "":
		return id.DisplayName
	case id.Email != "":
		return id.Email
	}
	return "Anonymous User"
}

// Role is the resolved privilege of an identity.
type Role int

const (
	RoleUnresolved Role = iota
	RoleCustomer
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleAdmin:
		return "admin"
	}
	return "unresolved"
}

// Session is built once per request (or per stream) and passed explicitly
// to every service call.
type Session struct {
	AuthResolved bool
	Identity     *Identity
	Role         Role
}

// Guest is a resolved session without an identity.
func Guest() Session {
	return Session{AuthResolved: true}
}

// Resolved is a fully resolved session for id.
func Resolved(id Identity, role Role) Session {
	return Session{AuthResolved: true, Identity: &id, Role: role}
}

func (s Session) UID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.UID
}

// IsAdmin is true only once the role has resolved to admin.
func (s Session) IsAdmin() bool {
	return s.AuthResolved && s.Identity != nil && s.Role == RoleAdmin
}

// SignedIn reports a non-anonymous identity.
func (s Session) SignedIn() bool {
	return s.Identity != nil && !s.Identity.Anonymous
}

// Home is where clients send the caller after sign-in.
func (s Session) Home() string {
	switch {
	case s.IsAdmin():
		return "/admin"
	case s.SignedIn():
		return "/account"
	}
	return "/login"
}
