package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"board/internal/kvstore"
	"board/internal/models"
	"board/internal/observability"

	"github.com/redis/go-redis/v9"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
}

// commentRepository appends JSON comments to one shared Redis list.
type commentRepository struct {
	rdb redis.Cmdable
	log *observability.RepoLogger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(rdb redis.Cmdable) CommentRepository {
	return &commentRepository{
		rdb: rdb,
		log: observability.NewRepoLogger(kvstore.CommentsKey),
	}
}

// Create appends the comment to the end of the list. The post id is not checked.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, span := observability.StartRedisSpan(ctx, "comments.create", kvstore.CommentsKey)
	defer func() { observability.EndSpan(span, err) }()

	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}

	if err := r.rdb.RPush(ctx, kvstore.CommentsKey, payload).Err(); err != nil {
		r.log.LogError(ctx, err, "create")
		return fmt.Errorf("append comment: %w", err)
	}

	observability.CommentsCreated.Inc()
	r.log.LogCreate(ctx, slog.String("post_id", comment.PostID))
	return nil
}

// ListByPost scans the whole list and keeps the post's comments in insertion order.
func (r *commentRepository) ListByPost(ctx context.Context, postID string) (comments []*models.Comment, err error) {
	ctx, span := observability.StartRedisSpan(ctx, "comments.list", kvstore.CommentsKey)
	defer func() { observability.EndSpan(span, err) }()

	entries, err := r.rdb.LRange(ctx, kvstore.CommentsKey, 0, -1).Result()
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, fmt.Errorf("load comments: %w", err)
	}

	comments = make([]*models.Comment, 0)
	for i, entry := range entries {
		var c models.Comment
		if err := json.Unmarshal([]byte(entry), &c); err != nil {
			return nil, fmt.Errorf("malformed comment at index %d: %w", i, err)
		}
		if c.PostID == postID {
			comments = append(comments, &c)
		}
	}

	r.log.LogRead(ctx, slog.String("post_id", postID), slog.Int("count", len(comments)))
	return comments, nil
}
