// Package seed fills the board with generated posts and comments for local development.
package seed

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"board/internal/kvstore"
	"board/internal/models"
	"board/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/redis/go-redis/v9"
)

// Options configuration for the seeder
type Options struct {
	NumPosts        int
	CommentsPerPost int
	ShouldClean     bool
	// Seed makes the generated content reproducible; zero picks a time-based seed.
	Seed int64
}

// Seeder writes demo data through the same repositories the web pages use.
type Seeder struct {
	rdb      redis.Cmdable
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewSeeder creates a seeder bound to rdb.
func NewSeeder(rdb redis.Cmdable) *Seeder {
	return &Seeder{
		rdb:      rdb,
		posts:    repository.NewPostRepository(rdb),
		comments: repository.NewCommentRepository(rdb),
	}
}

// Run clears the board if asked and then seeds it. It returns the ids of the new posts.
func (s *Seeder) Run(ctx context.Context, opts Options) ([]string, error) {
	if opts.ShouldClean {
		removed, err := s.ClearAll(ctx)
		if err != nil {
			return nil, err
		}
		log.Printf("Removed %d keys", removed)
	}
	return s.SeedBoard(ctx, opts)
}

// SeedBoard creates opts.NumPosts posts with opts.CommentsPerPost comments each.
func (s *Seeder) SeedBoard(ctx context.Context, opts Options) ([]string, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	ids := make([]string, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		id, err := s.posts.Create(ctx,
			faker.Name(),
			faker.Sentence(faker.IntRange(3, 8)),
			faker.Paragraph(1, faker.IntRange(2, 5), 12, " "),
		)
		if err != nil {
			return ids, fmt.Errorf("create post %d: %w", i+1, err)
		}
		ids = append(ids, id)

		for j := 0; j < opts.CommentsPerPost; j++ {
			err := s.comments.Create(ctx, &models.Comment{
				Author: faker.FirstName(),
				Text:   faker.Sentence(faker.IntRange(4, 14)),
				PostID: id,
			})
			if err != nil {
				return ids, fmt.Errorf("create comment on post %s: %w", id, err)
			}
		}
	}
	return ids, nil
}

// ClearAll deletes the board's keys: the id counter, the comment list and every post.
// Keys that are neither reserved nor numeric are left alone.
func (s *Seeder) ClearAll(ctx context.Context) (int64, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, "*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if kvstore.IsReserved(key) || isPostKey(key) {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete keys: %w", err)
	}
	return removed, nil
}

func isPostKey(key string) bool {
	_, err := strconv.ParseUint(key, 10, 64)
	return err == nil
}
