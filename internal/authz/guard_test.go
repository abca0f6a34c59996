package authz

import (
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	t.Parallel()

	post := &models.Post{ID: 1, UserID: 10}
	comment := &models.Comment{ID: 2, PostID: 1, UserID: 20}

	author := models.Actor{ID: 10, Handle: "author"}
	other := models.Actor{ID: 30, Handle: "other"}
	admin := models.Actor{ID: 99, Handle: "root", Privileged: true}
	anonymous := models.Actor{}
	privilegedAnonymous := models.Actor{Privileged: true}

	tests := []struct {
		name   string
		actor  models.Actor
		entity Owned
		want   bool
	}{
		{"post author", author, post, true},
		{"post other user", other, post, false},
		{"post privileged", admin, post, true},
		{"post anonymous", anonymous, post, false},
		{"post anonymous with privilege flag", privilegedAnonymous, post, false},
		{"comment author", models.Actor{ID: 20}, comment, true},
		{"comment post author is not comment author", author, comment, false},
		{"comment privileged", admin, comment, true},
		{"comment anonymous", anonymous, comment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.actor, tt.entity))
		})
	}
}

func TestIsAuthorIgnoresPrivilege(t *testing.T) {
	t.Parallel()

	comment := &models.Comment{UserID: 5}
	assert.True(t, IsAuthor(models.Actor{ID: 5}, comment))
	assert.False(t, IsAuthor(models.Actor{ID: 6, Privileged: true}, comment))
	assert.False(t, IsAuthor(models.Actor{}, &models.Comment{}))
}
