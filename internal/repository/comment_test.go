package repository

import (
	"context"
	"testing"

	"chirp/internal/models"
	"chirp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestCommentRepository_DeleteThreadCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")

	c1 := testutil.CreateComment(t, db, post, alice, nil)
	c2 := testutil.CreateComment(t, db, post, bob, c1)
	c3 := testutil.CreateComment(t, db, post, alice, c2)
	sibling := testutil.CreateComment(t, db, post, bob, nil)

	_, err := repo.ToggleLike(ctx, c3.ID, bob.ID)
	require.NoError(t, err)

	removed, err := repo.DeleteThread(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	for _, id := range []uint{c1.ID, c2.ID, c3.ID} {
		_, err := repo.GetByID(ctx, id, 0)
		assert.True(t, models.IsCode(err, models.CodeNotFound), "comment %d should be gone", id)
	}

	kept, err := repo.GetByID(ctx, sibling.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, sibling.ID, kept.ID)

	var likes int64
	require.NoError(t, db.Model(&models.CommentLike{}).Where("comment_id = ?", c3.ID).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestCommentRepository_DeleteThreadLeaf(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	c1 := testutil.CreateComment(t, db, post, alice, nil)
	c2 := testutil.CreateComment(t, db, post, alice, c1)

	removed, err := repo.DeleteThread(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	parent, err := repo.GetByID(ctx, c1.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, parent.RepliesCount)
}

func TestCommentRepository_DeleteThreadMissing(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := NewCommentRepository(db).DeleteThread(context.Background(), 77)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommentRepository_CollectDescendantsBreadthFirst(t *testing.T) {
	db := testutil.NewTestDB(t)

	alice := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	root := testutil.CreateComment(t, db, post, alice, nil)
	a := testutil.CreateComment(t, db, post, alice, root)
	b := testutil.CreateComment(t, db, post, alice, root)
	a1 := testutil.CreateComment(t, db, post, alice, a)
	b1 := testutil.CreateComment(t, db, post, alice, b)

	ids, err := collectDescendants(db, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID, a1.ID, b1.ID}, ids)
}

func TestCommentRepository_ListingsAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	top := testutil.CreateComment(t, db, post, alice, nil)
	r1 := testutil.CreateComment(t, db, post, bob, top)
	r2 := testutil.CreateComment(t, db, post, alice, top)

	replies, err := repo.ListReplies(ctx, top.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID)
	assert.Equal(t, r2.ID, replies[1].ID)
	require.NotNil(t, replies[0].User)
	assert.Equal(t, bob.Username, replies[0].User.Username)

	all, err := repo.ListByPost(ctx, post.ID, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, r2.ID, all[0].ID, "newest first")

	total, err := repo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	mine, err := repo.ListByUser(ctx, bob.ID, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	byBob, err := repo.CountByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byBob)

	got, err := repo.GetByID(ctx, top.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RepliesCount)
}

func TestCommentRepository_UpdateContent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	c := testutil.CreateComment(t, db, post, alice, nil)

	require.NoError(t, repo.UpdateContent(ctx, c.ID, "edited"))
	got, err := repo.GetByID(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	err = repo.UpdateContent(ctx, 999, "x")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommentRepository_CreateRejectsDanglingReferences(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	other := testutil.CreatePost(t, db, alice, "")
	foreign := testutil.CreateComment(t, db, other, alice, nil)

	missing := uint(987654)
	cases := []struct {
		name    string
		comment models.Comment
	}{
		{"missing parent", models.Comment{PostID: post.ID, ParentID: &missing}},
		{"parent on another post", models.Comment{PostID: post.ID, ParentID: &foreign.ID}},
		{"missing post", models.Comment{PostID: 404}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.comment
			c.UserID = alice.ID
			c.Content = "reply"
			err := repo.Create(ctx, &c)
			assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)
			assert.Zero(t, c.ID)
		})
	}

	var stored int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&stored).Error)
	assert.Zero(t, stored)
}

func TestCommentRepository_CreateReply(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	parent := testutil.CreateComment(t, db, post, alice, nil)

	reply := &models.Comment{PostID: post.ID, UserID: alice.ID, Content: "reply", ParentID: &parent.ID}
	require.NoError(t, repo.Create(ctx, reply))
	require.NotZero(t, reply.ID)

	got, err := repo.GetByID(ctx, parent.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RepliesCount)
}

func TestCommentRepository_LockThreadMatchesWalk(t *testing.T) {
	db := testutil.NewTestDB(t)

	alice := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	root := testutil.CreateComment(t, db, post, alice, nil)
	a := testutil.CreateComment(t, db, post, alice, root)
	a1 := testutil.CreateComment(t, db, post, alice, a)

	ids, err := lockThread(db, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, a1.ID}, ids)

	leaf, err := lockThread(db, a1.ID)
	require.NoError(t, err)
	assert.Empty(t, leaf)
}

func TestSchema_ForeignKeysCascade(t *testing.T) {
	db := testutil.NewStrictTestDB(t)

	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, alice, "")
	parent := testutil.CreateComment(t, db, post, alice, nil)
	reply := testutil.CreateComment(t, db, post, bob, parent)
	require.NoError(t, db.Create(&models.CommentLike{UserID: bob.ID, CommentID: reply.ID}).Error)
	require.NoError(t, db.Create(&models.PostLike{UserID: bob.ID, PostID: post.ID}).Error)

	t.Run("dangling parent rejected", func(t *testing.T) {
		missing := uint(987654)
		err := db.Omit(clause.Associations).Create(&models.Comment{
			PostID: post.ID, UserID: alice.ID, Content: "orphan", ParentID: &missing,
		}).Error
		require.Error(t, err)
		_, ok := foreignKeyViolation(err)
		assert.True(t, ok, "got %v", err)
	})

	t.Run("dangling like rejected", func(t *testing.T) {
		err := db.Create(&models.PostLike{UserID: alice.ID, PostID: 404}).Error
		_, ok := foreignKeyViolation(err)
		assert.True(t, ok, "got %v", err)
	})

	t.Run("parent delete removes replies and likes", func(t *testing.T) {
		require.NoError(t, db.Exec("DELETE FROM comments WHERE id = ?", parent.ID).Error)

		var replies, likes int64
		require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", reply.ID).Count(&replies).Error)
		require.NoError(t, db.Model(&models.CommentLike{}).Where("comment_id = ?", reply.ID).Count(&likes).Error)
		assert.Zero(t, replies)
		assert.Zero(t, likes)
	})

	t.Run("post delete removes likes", func(t *testing.T) {
		require.NoError(t, db.Exec("DELETE FROM posts WHERE id = ?", post.ID).Error)

		var likes int64
		require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
		assert.Zero(t, likes)
	})
}
