// Package repository provides the Redis-backed data access layer of the board.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"board/internal/kvstore"
	"board/internal/models"
	"board/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// excerptLength is the text length from which the listing shortens a post body.
	excerptLength = 90
	scanBatchSize = 100
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, author, title, text string) (string, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	rdb redis.Cmdable
	now func() time.Time
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(rdb redis.Cmdable) PostRepository {
	return &postRepository{
		rdb: rdb,
		now: time.Now,
		log: observability.NewRepoLogger("posts"),
	}
}

// Create takes the next id from the shared counter and stores the post hash under it.
func (r *postRepository) Create(ctx context.Context, author, title, text string) (id string, err error) {
	ctx, span := observability.StartRedisSpan(ctx, "posts.create", kvstore.CounterKey)
	defer func() { observability.EndSpan(span, err) }()

	n, err := r.rdb.Incr(ctx, kvstore.CounterKey).Result()
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return "", fmt.Errorf("allocate post id: %w", err)
	}
	id = strconv.FormatInt(n, 10)

	post := models.NewPost(id, author, title, text, r.now())
	if err := r.rdb.HSet(ctx, id, post).Err(); err != nil {
		r.log.LogError(ctx, err, "create")
		return "", fmt.Errorf("store post %s: %w", id, err)
	}

	observability.PostsCreated.Inc()
	r.log.LogCreate(ctx, slog.String("post_id", id))
	return id, nil
}

// GetByID returns the full post. Absent ids and reserved keys are NOT_FOUND.
func (r *postRepository) GetByID(ctx context.Context, id string) (post *models.Post, err error) {
	if kvstore.IsReserved(id) {
		return nil, models.NewNotFoundError("post", id)
	}

	ctx, span := observability.StartRedisSpan(ctx, "posts.get", id)
	defer func() { observability.EndSpan(span, err) }()

	cmd := r.rdb.HGetAll(ctx, id)
	fields, err := cmd.Result()
	if err != nil {
		r.log.LogError(ctx, err, "read")
		return nil, fmt.Errorf("load post %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, models.NewNotFoundError("post", id)
	}

	post = &models.Post{}
	if err := cmd.Scan(post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}

	r.log.LogRead(ctx, slog.String("post_id", id))
	return post, nil
}

type listedPost struct {
	seq  int64
	post *models.Post
}

// List returns every post, newest first, with long texts shortened for display.
func (r *postRepository) List(ctx context.Context) (posts []*models.Post, err error) {
	ctx, span := observability.StartRedisSpan(ctx, "posts.list", "*")
	defer func() { observability.EndSpan(span, err) }()

	keys, err := r.postKeys(ctx)
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	if len(keys) == 0 {
		return []*models.Post{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	if _, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	}); err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, fmt.Errorf("load posts: %w", err)
	}

	listed := make([]listedPost, 0, len(keys))
	for i, cmd := range cmds {
		seq, err := strconv.ParseInt(keys[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed post key %q: %w", keys[i], err)
		}
		if len(cmd.Val()) == 0 {
			continue
		}

		post := &models.Post{}
		if err := cmd.Scan(post); err != nil {
			return nil, fmt.Errorf("decode post %s: %w", keys[i], err)
		}
		post.Text = truncateText(post.Text)
		listed = append(listed, listedPost{seq: seq, post: post})
	}

	sort.Slice(listed, func(i, j int) bool { return listed[i].seq > listed[j].seq })

	posts = make([]*models.Post, len(listed))
	for i, lp := range listed {
		posts[i] = lp.post
	}

	r.log.LogRead(ctx, slog.Int("count", len(posts)))
	return posts, nil
}

// postKeys walks the keyspace with SCAN and drops the reserved keys.
func (r *postRepository) postKeys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string

	iter := r.rdb.Scan(ctx, 0, "*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if kvstore.IsReserved(key) {
			continue
		}
		// SCAN may return a key more than once.
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	return keys, nil
}

// truncateText keeps texts shorter than excerptLength as they are; longer ones keep
// excerptLength+1 characters followed by an ellipsis.
func truncateText(text string) string {
	runes := []rune(text)
	if len(runes) < excerptLength {
		return text
	}
	if len(runes) > excerptLength+1 {
		runes = runes[:excerptLength+1]
	}
	return string(runes) + "..."
}
