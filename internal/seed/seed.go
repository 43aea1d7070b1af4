// Package seed fills a database with demo marketplace data. It is intended for
// development and testing only.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gighub/internal/middleware"
	"gighub/internal/models"
	"gighub/internal/repository"
	"gighub/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers      int
	NumPosts      int
	OffersPerPost int
	// AcceptRatio is the share of posts, in [0, 1], that get an accepted offer.
	AcceptRatio float64
	ShouldClean bool
	// Seed makes the generated data reproducible when non-zero.
	Seed int64
}

// Result summarizes what a seeding run created.
type Result struct {
	Users    []*models.User
	Posts    []*models.Post
	Offers   []*models.Offer
	Accepted int
}

// Seeder writes demo data through the same services the API uses, so every
// relation set and status transition is recorded the normal way.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	users   *service.UserService
	posts   *service.PostService
	offers  *service.OfferService
}

// NewSeeder creates a seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	return &Seeder{
		db:      db,
		factory: NewFactory(opts.Seed),
		users:   service.NewUserService(userRepo),
		posts:   service.NewPostService(postRepo, offerRepo, userRepo),
		offers:  service.NewOfferService(postRepo, offerRepo, userRepo),
	}
}

// ClearAll deletes every marketplace row.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"user_post_links", "offers", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Seed creates users, posts authored by them, offers from other users and,
// for a share of posts, an accepted offer.
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Result, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("need at least 2 users, got %d", opts.NumUsers)
	}
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for i := 0; i < opts.NumUsers; i++ {
		profile := s.factory.Profile()
		user, err := s.users.FindOrCreateByExternalID(ctx, profile.ExternalID, profile.Input)
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		res.Users = append(res.Users, user)
	}

	acceptEvery := 0
	if opts.AcceptRatio > 0 {
		acceptEvery = int(1 / opts.AcceptRatio)
		if acceptEvery < 1 {
			acceptEvery = 1
		}
	}

	for i := 0; i < opts.NumPosts; i++ {
		owner := res.Users[i%len(res.Users)]
		in := s.factory.Post()
		in.AuthorExternalID = owner.ExternalID
		post, err := s.posts.CreatePost(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create post %d: %w", i, err)
		}
		res.Posts = append(res.Posts, post)

		var first *models.Offer
		for j := 1; j <= opts.OffersPerPost && j < len(res.Users); j++ {
			bidder := res.Users[(i+j)%len(res.Users)]
			offer, err := s.offers.RequestReceive(ctx, post.ID, bidder.ExternalID, s.factory.Offer())
			if err != nil {
				return nil, fmt.Errorf("create offer on post %s: %w", post.ID, err)
			}
			res.Offers = append(res.Offers, offer)
			if first == nil {
				first = offer
			}
		}

		if first != nil && acceptEvery > 0 && i%acceptEvery == 0 {
			if _, err := s.offers.AcceptOffer(ctx, post.ID, first.ID, owner.ExternalID); err != nil {
				return nil, fmt.Errorf("accept offer on post %s: %w", post.ID, err)
			}
			res.Accepted++
		}
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", len(res.Posts)),
		slog.Int("offers", len(res.Offers)),
		slog.Int("accepted", res.Accepted),
	)
	return res, nil
}
