package apitest

import "github.com/gofiber/fiber/v2"

func respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

func unauthorized(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusUnauthorized, fiber.Map{"message": message})
}

func forbidden(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusForbidden, fiber.Map{"message": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusNotFound, fiber.Map{"message": message})
}
