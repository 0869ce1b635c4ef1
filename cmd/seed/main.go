// Command main fills the board with generated posts and comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"board/internal/config"
	"board/internal/kvstore"
	"board/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 25, "Number of posts to create")
	numComments := flag.Int("comments", 3, "Number of comments per post")
	shouldClean := flag.Bool("flush", false, "Remove existing posts and comments before seeding")
	fakerSeed := flag.Int64("seed", 0, "Seed for generated content (0 = random)")
	flag.Parse()

	log.Printf("Target: %d posts, %d comments each, flush=%v", *numPosts, *numComments, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rdb, err := kvstore.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()

	ids, err := seed.NewSeeder(rdb).Run(ctx, seed.Options{
		NumPosts:        *numPosts,
		CommentsPerPost: *numComments,
		ShouldClean:     *shouldClean,
		Seed:            *fakerSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if len(ids) > 0 {
		log.Printf("Created posts %s..%s", ids[0], ids[len(ids)-1])
	} else {
		log.Println("No posts created")
	}
}
