// Package authz decides whether an actor may mutate a piece of content.
// The checks are pure and never consulted on read paths.
package authz

import "chirp/internal/models"

// Owned is implemented by anything with a single owning user.
type Owned interface {
	OwnerID() uint
}

// CanMutate reports whether actor may modify or delete entity: the owner or
// any privileged actor. Anonymous actors are always refused.
func CanMutate(actor models.Actor, entity Owned) bool {
	if !actor.Authenticated() {
		return false
	}
	return actor.Privileged || IsAuthor(actor, entity)
}

// IsAuthor reports whether actor owns entity. Privilege is ignored.
func IsAuthor(actor models.Actor, entity Owned) bool {
	return actor.Authenticated() && entity != nil && actor.ID == entity.OwnerID()
}
