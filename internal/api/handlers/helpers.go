package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func GetPostID(c *fiber.Ctx) int64 {
	id, _ := c.ParamsInt("id", 0)
	return int64(id)
}
