package middleware

import (
	"github.com/gofiber/fiber/v2"

	"ops-journal/internal/domain"
)

// RequestMeta extracts client details for sessions, rate limiting and audit.
func RequestMeta(c *fiber.Ctx) domain.RequestMeta {
	meta := domain.RequestMeta{}

	if ip := c.IP(); ip != "" {
		meta.IPAddress = &ip
	}
	if ua := c.Get("User-Agent"); ua != "" {
		meta.UserAgent = &ua
	}
	return meta
}
