package services

import "github.com/powercards/powercards-api/internal/models"

// Resource is the access-control view of a stored document: who owns it
// and whether it is publicly visible.
type Resource interface {
	Owner() string
	Visible() bool
}

// CanRead reports whether the user may read the resource: public resources
// are readable by anyone authenticated, private ones only by their author.
func CanRead(r Resource, u *models.User) bool {
	return r.Visible() || r.Owner() == u.Username
}

// CanWrite reports whether the user may mutate the resource. Only the
// author may write; creation of a new resource is permitted to any
// authenticated user and is checked by the services, not here.
func CanWrite(r Resource, u *models.User) bool {
	return r.Owner() == u.Username
}
