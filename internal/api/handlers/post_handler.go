package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/marcusfern/postpilot/internal/repository"
)

type PostHandler struct {
	pr repository.PostRepository
}

func NewPostHandler(pr repository.PostRepository) *PostHandler {
	return &PostHandler{pr: pr}
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID := GetPostID(c)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.pr.GetByID(c.Context(), postID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load post",
		})
	}
	if post == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	status := c.Query("status", "posted")

	posts, err := h.pr.ListByStatus(c.Context(), status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}
