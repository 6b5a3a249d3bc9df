// Package policy decides who may read and change foods, recipes, exercises and diet plans.
package policy

// Role is a platform role carried in the access token.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleCoach      Role = "coach"
	RoleClient     Role = "client"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleCoach, RoleClient:
		return true
	}
	return false
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsSuperAdmin reports whether the actor administers system content.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// Owned is implemented by every resource carrying system/user ownership.
type Owned interface {
	System() bool
	Owner() string
}

// Publishable is implemented by resources gated behind publication.
type Publishable interface {
	Published() bool
}

// Assignable is implemented by resources a coach hands to a client.
type Assignable interface {
	AssignedTo() string
}

// CanMutate is the single ownership check for updates and deletes.
func CanMutate(resource Owned, actor Actor) bool {
	if actor.IsSuperAdmin() {
		return true
	}
	if resource.System() {
		return false
	}
	return actor.ID != "" && resource.Owner() == actor.ID
}

// CanView reports whether the actor may read the resource. Publication gating applies
// only to resources implementing Publishable.
func CanView(resource Owned, actor Actor) bool {
	if actor.IsSuperAdmin() {
		return true
	}
	if resource.System() {
		if p, ok := resource.(Publishable); ok {
			return p.Published()
		}
		return true
	}
	if actor.ID == "" {
		return false
	}
	if resource.Owner() == actor.ID {
		return true
	}
	if a, ok := resource.(Assignable); ok {
		return a.AssignedTo() == actor.ID
	}
	return false
}

// CanCreateSystem reports whether the actor may create platform-owned content.
func CanCreateSystem(actor Actor) bool {
	return actor.IsSuperAdmin()
}
