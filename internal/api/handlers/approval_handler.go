package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/marcusfern/postpilot/internal/service"
	"github.com/marcusfern/postpilot/internal/transfer"
)

type ApprovalHandler struct {
	s service.ApprovalService
}

func NewApprovalHandler(service service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{s: service}
}

func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	postID := GetPostID(c)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	err := h.s.Approve(c.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) || errors.Is(err, service.ErrNotAwaitingReview) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to approve post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post approved for publishing",
	})
}

func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	postID := GetPostID(c)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var req transfer.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
	}

	err := h.s.Reject(c.Context(), postID, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) || errors.Is(err, service.ErrNotAwaitingReview) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to reject post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post rejected",
	})
}

func (h *ApprovalHandler) Pending(c *fiber.Ctx) error {
	posts, err := h.s.Pending(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list pending posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ApprovalHandler) Accuracy(c *fiber.Ctx) error {
	report, err := h.s.Accuracy(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to build accuracy report",
		})
	}

	return c.Status(fiber.StatusOK).JSON(report)
}
