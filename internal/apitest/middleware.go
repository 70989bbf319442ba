package apitest

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"donasi/internal/models"
)

const claimsKey = "claims"

// injectFailures answers with a queued failure before any handler runs.
func (b *Backend) injectFailures(c *fiber.Ctx) error {
	f, ok := b.takeFailure(c.Method(), c.Path())
	if !ok {
		return c.Next()
	}
	message := f.message
	if message == "" {
		message = "injected failure"
	}
	return respond(c, f.status, fiber.Map{"message": message})
}

// dropBodies empties successful responses queued with SilenceNext.
func (b *Backend) dropBodies(c *fiber.Ctx) error {
	if !b.takeSilence(c.Method(), c.Path()) {
		return c.Next()
	}
	if err := c.Next(); err != nil {
		return err
	}
	if status := c.Response().StatusCode(); status >= 200 && status < 300 {
		c.Response().ResetBody()
		c.Response().Header.Del(fiber.HeaderContentType)
	}
	return nil
}

// requireAuth checks the bearer token: 401 when it is missing, 403 when it
// is invalid or expired.
func (b *Backend) requireAuth(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorized(c, "invalid authorization format")
	}

	claims, err := b.parseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return forbidden(c, "invalid or expired token")
	}

	b.mu.Lock()
	_, exists := b.accounts[claims.UserID]
	b.mu.Unlock()
	if !exists {
		return forbidden(c, "unknown user")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func claimsFrom(c *fiber.Ctx) *models.AccessClaims {
	claims, _ := c.Locals(claimsKey).(*models.AccessClaims)
	return claims
}
