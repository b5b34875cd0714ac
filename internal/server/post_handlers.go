package server

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/kanishk-8/EcoCircle/internal/gateway"
	"github.com/kanishk-8/EcoCircle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// readUpload pulls the bytes out of a multipart file header.
func readUpload(fh *multipart.FileHeader) (*gateway.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &gateway.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data")
}

// CreatePost handles POST /api/posts. Accepts JSON for text-only posts and
// multipart/form-data when an image rides along.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := gateway.CreatePostInput{}

	if isMultipart(c) {
		in.Title = c.FormValue("title")
		in.Content = c.FormValue("content")
		in.Category = c.FormValue("category")
		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			upload, err := readUpload(fh)
			if err != nil {
				return models.RespondWithError(c, models.NewValidationError("Unreadable image upload"))
			}
			in.Image = upload
		}
	} else {
		var req struct {
			Title    string `json:"title"`
			Content  string `json:"content"`
			Category string `json:"category"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.Category = req.Category
	}

	post, err := s.gateway.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts. refresh=true bypasses the cache and flags
// the fetch as a pull-to-refresh.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	refresh := c.QueryBool("refresh", false)

	posts, err := s.gateway.GetPosts(c.UserContext(), page.Limit, page.Offset, refresh)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.gateway.GetPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.gateway.GetUserPosts(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id. JSON fields are tri-state: absent
// fields stay untouched. A multipart body replaces the image.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := gateway.UpdatePostInput{PostID: id}

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		}
		if vals := form.Value["title"]; len(vals) > 0 {
			in.Title = &vals[0]
		}
		if vals := form.Value["content"]; len(vals) > 0 {
			in.Content = &vals[0]
		}
		if vals := form.Value["category"]; len(vals) > 0 {
			in.Category = &vals[0]
		}
		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			upload, err := readUpload(fh)
			if err != nil {
				return models.RespondWithError(c, models.NewValidationError("Unreadable image upload"))
			}
			in.Image = upload
		}
	} else {
		var req struct {
			Title    *string `json:"title"`
			Content  *string `json:"content"`
			Category *string `json:"category"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Content = req.Content
		in.Category = req.Category
	}

	post, err := s.gateway.UpdatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.gateway.DeletePost(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.gateway.ToggleLike(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": id, "liked": liked})
}
