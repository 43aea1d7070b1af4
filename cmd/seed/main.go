// Command seed fills the database with demo marketplace data.
package main

import (
	"context"
	"flag"
	"log"

	"gighub/internal/config"
	"gighub/internal/database"
	"gighub/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.NumUsers, "users", 20, "Number of users to create")
	flag.IntVar(&opts.NumPosts, "posts", 60, "Number of posts to create")
	flag.IntVar(&opts.OffersPerPost, "offers", 3, "Offers submitted on each post")
	flag.Float64Var(&opts.AcceptRatio, "accept", 0.3, "Share of posts that get an accepted offer")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed; 0 picks one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("Refusing to seed a %s database", cfg.Env)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.ApplySchema(db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	res, err := seed.NewSeeder(db, opts).Seed(context.Background(), opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d posts, %d offers (%d accepted)",
		len(res.Users), len(res.Posts), len(res.Offers), res.Accepted)
}
