// Package seed creates demo and test data for the chirp database. It is
// intended for development, load testing and integration tests only.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"chirp/internal/auth"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password given to every seeded account.
const DefaultPassword = "password123"

var handleUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// Options tune how data is generated.
type Options struct {
	// SkipBcrypt stores a cheap placeholder hash. Seeded accounts cannot log
	// in when set.
	SkipBcrypt bool
	// DryRun builds entities with synthetic IDs and writes nothing.
	DryRun bool
	// MaxDays spreads created_at timestamps over the last MaxDays days.
	MaxDays int
	// BatchSize is the insert batch size for posts.
	BatchSize int
	// RandSeed makes generated content reproducible when non-zero.
	RandSeed int64
}

func (o Options) withDefaults() Options {
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.RandSeed == 0 {
		o.RandSeed = time.Now().UnixNano()
	}
	return o
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	rng    *rand.Rand
	hasher auth.BcryptHasher
	now    func() time.Time

	// synthetic ID counter when running in DryRun mode
	nextID uint
	// cached hash of DefaultPassword
	passwordHash string
	handleSeq    int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	opts = opts.withDefaults()
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(opts.RandSeed),
		// #nosec G404: acceptable for seeding
		rng:    rand.New(rand.NewSource(opts.RandSeed)),
		hasher: auth.BcryptHasher{},
		now:    time.Now,
		nextID: 1000,
	}
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

func (f *Factory) password() (string, error) {
	if f.passwordHash != "" {
		return f.passwordHash, nil
	}
	if f.opts.SkipBcrypt {
		f.passwordHash = "unhashed:" + DefaultPassword
		return f.passwordHash, nil
	}
	hashed, err := f.hasher.Hash(DefaultPassword)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.passwordHash = hashed
	return hashed, nil
}

// pastTime returns a timestamp within the configured window.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rng.Int63n(int64(f.opts.MaxDays) * int64(24*time.Hour)))
	return f.now().Add(-back).Truncate(time.Second)
}

// Handle returns a unique, valid username derived from a fake name.
func (f *Factory) Handle() string {
	f.handleSeq++
	base := strings.ToLower(f.faker.FirstName() + "_" + f.faker.LastName())
	base = handleUnsafe.ReplaceAllString(base, "")
	suffix := fmt.Sprintf("_%d", f.handleSeq)
	if limit := validation.MaxUsernameLength - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	if len(base) < validation.MinUsernameLength {
		base = "chirper"
	}
	return base + suffix
}

// Content returns fake text that always satisfies the content rules.
func (f *Factory) Content(sentences int) string {
	if sentences <= 0 {
		sentences = 1
	}
	parts := make([]string, 0, sentences)
	for i := 0; i < sentences; i++ {
		parts = append(parts, f.faker.Sentence(f.rng.Intn(10)+3))
	}
	return clampContent(strings.Join(parts, " "))
}

func clampContent(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > validation.MaxContentLength {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:validation.MaxContentLength]))
	}
	if text == "" {
		text = "chirp"
	}
	return text
}

// BuildUser constructs a user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.password()
	if err != nil {
		return nil, err
	}
	handle := f.Handle()
	user := &models.User{
		Username:    handle,
		Email:       handle + "@example.com",
		Password:    hash,
		DisplayName: f.faker.Name(),
		Bio:         clampContent(f.faker.Sentence(12)),
		Location:    f.faker.City(),
		AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle),
		Membership:  models.MembershipBasic,
		IsActive:    true,
		CreatedAt:   f.pastTime(),
	}
	if f.rng.Intn(5) == 0 {
		user.Membership = models.MembershipPremium
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		user.ID = f.assignID()
		middleware.Logger.Debug("[dry-run] CreateUser", slog.String("username", user.Username))
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author without persisting it.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Content:   f.Content(f.rng.Intn(3) + 1),
		UserID:    author.ID,
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post by author.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.CreatePostsBatch([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists posts in batches of Options.BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.assignID()
		}
		middleware.Logger.Debug("[dry-run] CreatePostsBatch", slog.Int("posts", len(posts)))
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, f.opts.BatchSize).Error
}

// CreateComment persists a comment by author on post. A non-nil parent makes
// it a reply; the parent must belong to the same post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: f.Content(f.rng.Intn(2) + 1),
		UserID:  author.ID,
		PostID:  post.ID,
	}
	comment.CreatedAt = post.CreatedAt.Add(time.Duration(f.rng.Intn(72*60)+1) * time.Minute)
	if parent != nil {
		if parent.PostID != post.ID {
			return nil, fmt.Errorf("parent comment %d belongs to post %d, not %d", parent.ID, parent.PostID, post.ID)
		}
		parentID := parent.ID
		comment.ParentID = &parentID
		if comment.CreatedAt.Before(parent.CreatedAt) {
			comment.CreatedAt = parent.CreatedAt.Add(time.Minute)
		}
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = f.assignID()
		return comment, nil
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreatePostLike adds user to the like-set of post. Repeats are ignored.
func (f *Factory) CreatePostLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.PostLike{UserID: user.ID, PostID: post.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateCommentLike adds user to the like-set of comment. Repeats are ignored.
func (f *Factory) CreateCommentLike(user *models.User, comment *models.Comment) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.CommentLike{UserID: user.ID, CommentID: comment.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateFollow records that follower follows followee. Self-follows are
// rejected and repeats are ignored.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	if follower.ID == followee.ID {
		return fmt.Errorf("user %d cannot follow itself", follower.ID)
	}
	if f.opts.DryRun {
		return nil
	}
	edge := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}
