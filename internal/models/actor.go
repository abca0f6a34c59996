package models

// Actor is the identity on whose behalf an operation is performed.
// The zero value is an anonymous caller.
type Actor struct {
	ID         uint
	Handle     string
	Privileged bool
}

// Authenticated reports whether the actor identifies a user.
func (a Actor) Authenticated() bool {
	return a.ID != 0
}
