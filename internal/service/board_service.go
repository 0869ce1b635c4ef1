// Package service composes the board's repositories into the operations its pages need.
package service

import (
	"context"

	"board/internal/models"
	"board/internal/repository"

	"github.com/go-playground/validator/v10"
)

// BoardService validates submissions and reads/writes posts and comments.
type BoardService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	validate    *validator.Validate
}

// NewBoardService wires the service to its repositories.
func NewBoardService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *BoardService {
	return &BoardService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ListPosts returns the index listing, newest first.
func (s *BoardService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// CreatePost validates the form and stores a new post, returning its id.
func (s *BoardService) CreatePost(ctx context.Context, form models.PostForm) (string, error) {
	if err := s.validate.StructCtx(ctx, form); err != nil {
		return "", models.NewValidationError("author, title and text are required", err)
	}
	return s.postRepo.Create(ctx, form.Author, form.Title, form.Text)
}

// PostDetail loads a post and its comments, most recent comment first.
func (s *BoardService) PostDetail(ctx context.Context, postID string) (*models.Post, []*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}

	return post, reverse(comments), nil
}

// AddComment validates the form and appends a comment to postID.
// Callers load the post first; the repository does not check that it exists.
func (s *BoardService) AddComment(ctx context.Context, postID string, form models.CommentForm) error {
	if err := s.validate.StructCtx(ctx, form); err != nil {
		return models.NewValidationError("author and text are required", err)
	}
	return s.commentRepo.Create(ctx, &models.Comment{
		Author: form.Author,
		Text:   form.Text,
		PostID: postID,
	})
}

func reverse(comments []*models.Comment) []*models.Comment {
	out := make([]*models.Comment, len(comments))
	for i, c := range comments {
		out[len(comments)-1-i] = c
	}
	return out
}
