package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/marcusfern/postpilot/internal/service"
	"github.com/marcusfern/postpilot/internal/transfer"
)

type SettingsHandler struct {
	s service.ApprovalService
}

func NewSettingsHandler(service service.ApprovalService) *SettingsHandler {
	return &SettingsHandler{s: service}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.s.GetSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load approval settings",
		})
	}

	return c.JSON(settings)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var update transfer.ApprovalSettingsUpdate
	err := c.BodyParser(&update)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	err = h.s.UpdateSettings(c.Context(), update.AutoThreshold, update.DelayedThreshold, update.ManualThreshold, update.DelayedWaitMins)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
