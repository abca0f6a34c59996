package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"chirp/internal/middleware"
	"chirp/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset describes the shape of a seeded dataset.
type Preset struct {
	Name string `yaml:"name"`
	// Users is the number of accounts created.
	Users int `yaml:"users"`
	// Posts is the total number of posts, spread across users.
	Posts int `yaml:"posts"`
	// FollowsPerUser is the average out-degree of the follow graph.
	FollowsPerUser int `yaml:"follows_per_user"`
	// CommentsPerPost is the maximum number of top-level comments per post.
	CommentsPerPost int `yaml:"comments_per_post"`
	// ReplyDepth is the maximum nesting depth of reply chains.
	ReplyDepth int `yaml:"reply_depth"`
	// LikeRatio is the fraction of users liking any given post or comment.
	LikeRatio float64 `yaml:"like_ratio"`
	// Admins is the number of seeded users granted administrator rights.
	Admins int `yaml:"admins"`
}

// BuiltInPresets are the presets selectable by name.
var BuiltInPresets = map[string]Preset{
	"Minimal": {
		Name: "Minimal", Users: 5, Posts: 20,
		FollowsPerUser: 2, CommentsPerPost: 2, ReplyDepth: 1, LikeRatio: 0.3, Admins: 1,
	},
	"Default": {
		Name: "Default", Users: 50, Posts: 200,
		FollowsPerUser: 8, CommentsPerPost: 4, ReplyDepth: 3, LikeRatio: 0.15, Admins: 1,
	},
	"MegaPopulated": {
		Name: "MegaPopulated", Users: 500, Posts: 5000,
		FollowsPerUser: 25, CommentsPerPost: 6, ReplyDepth: 4, LikeRatio: 0.05, Admins: 2,
	},
}

// PresetNames lists the built-in presets in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(BuiltInPresets))
	for name := range BuiltInPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects presets that cannot produce a consistent dataset.
func (p Preset) Validate() error {
	switch {
	case p.Users <= 0:
		return errors.New("preset must create at least one user")
	case p.Posts < 0, p.FollowsPerUser < 0, p.CommentsPerPost < 0, p.ReplyDepth < 0, p.Admins < 0:
		return errors.New("preset counts must not be negative")
	case p.LikeRatio < 0 || p.LikeRatio > 1:
		return fmt.Errorf("like_ratio must be within [0, 1], got %v", p.LikeRatio)
	case p.Admins > p.Users:
		return fmt.Errorf("admins (%d) exceeds users (%d)", p.Admins, p.Users)
	}
	return nil
}

// LoadPreset reads a preset from a YAML file.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path) // #nosec G304: operator supplied path
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(strings.TrimSuffix(path, ".yaml"), ".yml")
	}
	if err := p.Validate(); err != nil {
		return Preset{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return p, nil
}

// ResolvePreset returns the built-in preset called name, or loads name as a
// YAML file when it ends in .yml or .yaml.
func ResolvePreset(name string) (Preset, error) {
	if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
		return LoadPreset(name)
	}
	p, ok := BuiltInPresets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// Summary counts what a seeding run created.
type Summary struct {
	Users        int
	Follows      int
	Posts        int
	Comments     int
	PostLikes    int
	CommentLikes int
}

// Seeder orchestrates a Factory to build a connected dataset.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// Factory exposes the underlying factory for ad-hoc entities.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// seededTables lists every table in delete order: children first.
var seededTables = []string{"comment_likes", "post_likes", "comments", "posts", "follows", "users"}

// ClearAll removes every row from the content tables.
func (s *Seeder) ClearAll() error {
	if s.factory.opts.DryRun {
		middleware.Logger.Info("[dry-run] skipping ClearAll")
		return nil
	}
	middleware.Logger.Info("Clearing existing data")

	if s.db.Dialector.Name() == "postgres" {
		sql := "TRUNCATE TABLE " + strings.Join(seededTables, ", ") + " RESTART IDENTITY CASCADE"
		return s.db.Exec(sql).Error
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range seededTables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// ApplyPreset seeds a full dataset shaped by p.
func (s *Seeder) ApplyPreset(p Preset) (Summary, error) {
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}
	middleware.Logger.Info("Applying seed preset",
		slog.String("preset", p.Name),
		slog.Int("users", p.Users),
		slog.Int("posts", p.Posts))

	var summary Summary
	users, follows, err := s.SeedSocialMesh(p.Users, p.FollowsPerUser)
	if err != nil {
		return summary, err
	}
	summary.Users = len(users)
	summary.Follows = follows

	for i := 0; i < p.Admins && i < len(users); i++ {
		if err := s.promote(users[i]); err != nil {
			return summary, err
		}
	}

	engagement, err := s.SeedEngagement(users, p)
	if err != nil {
		return summary, err
	}
	summary.Posts = engagement.Posts
	summary.Comments = engagement.Comments
	summary.PostLikes = engagement.PostLikes
	summary.CommentLikes = engagement.CommentLikes

	middleware.Logger.Info("Seeding complete",
		slog.Int("users", summary.Users),
		slog.Int("follows", summary.Follows),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
		slog.Int("post_likes", summary.PostLikes),
		slog.Int("comment_likes", summary.CommentLikes))
	return summary, nil
}

func (s *Seeder) promote(user *models.User) error {
	user.IsAdmin = true
	if s.factory.opts.DryRun {
		return nil
	}
	return s.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_admin", true).Error
}

// SeedSocialMesh creates count users and a follow graph in which each user
// follows up to followsPerUser others. It returns the users and the number
// of follow edges created.
func (s *Seeder) SeedSocialMesh(count, followsPerUser int) ([]*models.User, int, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, 0, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
		if (i+1)%100 == 0 {
			middleware.Logger.Info("Seeded users", slog.Int("count", i+1))
		}
	}

	follows := 0
	if len(users) < 2 {
		return users, follows, nil
	}
	rng := s.factory.rng
	for _, follower := range users {
		targets := rng.Perm(len(users))
		created := 0
		for _, idx := range targets {
			if created >= followsPerUser {
				break
			}
			followee := users[idx]
			if followee.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(follower, followee); err != nil {
				return nil, follows, fmt.Errorf("create follow: %w", err)
			}
			created++
		}
		follows += created
	}
	return users, follows, nil
}

// SeedEngagement creates posts, threaded comments and likes among users.
func (s *Seeder) SeedEngagement(users []*models.User, p Preset) (Summary, error) {
	var summary Summary
	if len(users) == 0 || p.Posts == 0 {
		return summary, nil
	}
	f := s.factory
	rng := f.rng

	posts := make([]*models.Post, 0, p.Posts)
	for i := 0; i < p.Posts; i++ {
		posts = append(posts, f.BuildPost(users[rng.Intn(len(users))]))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return summary, fmt.Errorf("create posts: %w", err)
	}
	summary.Posts = len(posts)

	for _, post := range posts {
		likes, err := s.likePost(users, post, p.LikeRatio)
		if err != nil {
			return summary, err
		}
		summary.PostLikes += likes

		if p.CommentsPerPost == 0 {
			continue
		}
		for c := rng.Intn(p.CommentsPerPost + 1); c > 0; c-- {
			created, commentLikes, err := s.seedThread(users, post, nil, p, p.ReplyDepth)
			if err != nil {
				return summary, err
			}
			summary.Comments += created
			summary.CommentLikes += commentLikes
		}
	}
	return summary, nil
}

func (s *Seeder) likePost(users []*models.User, post *models.Post, ratio float64) (int, error) {
	likes := 0
	for _, u := range users {
		if s.factory.rng.Float64() >= ratio {
			continue
		}
		if err := s.factory.CreatePostLike(u, post); err != nil {
			return likes, fmt.Errorf("like post %d: %w", post.ID, err)
		}
		likes++
	}
	return likes, nil
}

// seedThread creates one comment under parent and, while depth remains, a
// random chain of replies beneath it.
func (s *Seeder) seedThread(users []*models.User, post *models.Post, parent *models.Comment, p Preset, depth int) (int, int, error) {
	f := s.factory
	comment, err := f.CreateComment(users[f.rng.Intn(len(users))], post, parent)
	if err != nil {
		return 0, 0, fmt.Errorf("create comment: %w", err)
	}
	created, likes := 1, 0
	for _, u := range users {
		if f.rng.Float64() >= p.LikeRatio {
			continue
		}
		if err := f.CreateCommentLike(u, comment); err != nil {
			return created, likes, fmt.Errorf("like comment %d: %w", comment.ID, err)
		}
		likes++
	}

	if depth <= 0 {
		return created, likes, nil
	}
	for r := f.rng.Intn(3); r > 0; r-- {
		n, l, err := s.seedThread(users, post, comment, p, depth-1)
		created += n
		likes += l
		if err != nil {
			return created, likes, err
		}
	}
	return created, likes, nil
}
