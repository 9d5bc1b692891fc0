package handlers

import (
	"github.com/gofiber/fiber/v2"
	job "github.com/marcusfern/postpilot/internal/jobs"
)

type SchedulerHandler struct {
	j *job.PostScheduleJob
}

func NewSchedulerHandler(j *job.PostScheduleJob) *SchedulerHandler {
	return &SchedulerHandler{j: j}
}

func (h *SchedulerHandler) Trigger(c *fiber.Ctx) error {
	postID, err := h.j.Trigger(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to trigger pipeline run",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Pipeline run started",
		"post_id": postID,
	})
}

func (h *SchedulerHandler) Pause(c *fiber.Ctx) error {
	h.j.Pause()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"paused": true,
	})
}

func (h *SchedulerHandler) Resume(c *fiber.Ctx) error {
	h.j.Resume()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"paused": false,
	})
}

func (h *SchedulerHandler) Status(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"paused": h.j.Paused(),
	})
}
