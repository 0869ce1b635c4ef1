package server

import (
	"board/internal/models"

	"github.com/gofiber/fiber/v2"
)

// index lists every post, newest first.
func (s *Server) index(c *fiber.Ctx) Outcome {
	posts, err := s.board.ListPosts(c.UserContext())
	if err != nil {
		return Failure(err)
	}
	return Render("index", fiber.Map{
		"Title": "Posts",
		"Posts": posts,
	})
}

// newPost shows the form; a complete submission creates the post and redirects home.
// An incomplete one shows the form again.
func (s *Server) newPost(c *fiber.Ctx) Outcome {
	if c.Method() == fiber.MethodPost {
		var form models.PostForm
		if err := c.BodyParser(&form); err == nil {
			_, err := s.board.CreatePost(c.UserContext(), form)
			if err == nil {
				return Redirect("/")
			}
			if !models.IsValidation(err) {
				return Failure(err)
			}
		}
	}

	return Render("new_post", fiber.Map{
		"Title": "New post",
	})
}

// postDetail shows a post with its comments and accepts new comments.
// A comment added by this request shows up from the next view on.
func (s *Server) postDetail(c *fiber.Ctx) Outcome {
	ctx := c.UserContext()
	id := c.Params("id")

	post, comments, err := s.board.PostDetail(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return NotFound()
		}
		return Failure(err)
	}

	if c.Method() == fiber.MethodPost {
		var form models.CommentForm
		if err := c.BodyParser(&form); err == nil {
			if err := s.board.AddComment(ctx, id, form); err != nil && !models.IsValidation(err) {
				return Failure(err)
			}
		}
	}

	return Render("post_detail", fiber.Map{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments,
	})
}
