package apitest

import (
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"donasi/internal/models"
)

func (b *Backend) login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return respond(c, fiber.StatusBadRequest, fiber.Map{"message": "Email and password are required"})
	}

	b.mu.Lock()
	acc := b.accountByEmail(input.Email)
	b.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(input.Password)) != nil {
		return respond(c, fiber.StatusBadRequest, fiber.Map{"message": "Invalid email or password"})
	}

	return b.startSession(c, acc)
}

func (b *Backend) startSession(c *fiber.Ctx, acc *account) error {
	b.mu.Lock()
	user := acc.user
	b.mu.Unlock()

	accessToken, refreshToken, err := b.issueTokens(user)
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, fiber.Map{"message": "Failed to issue tokens"})
	}

	b.mu.Lock()
	b.refreshTokens[refreshToken] = user.ID
	b.mu.Unlock()

	b.setRefreshCookie(c, refreshToken, time.Now().Add(refreshLifetime))
	return respond(c, fiber.StatusOK, fiber.Map{
		"accessToken": accessToken,
		"user":        user,
	})
}

func (b *Backend) refreshToken(c *fiber.Ctx) error {
	token := c.Cookies("refreshToken")
	if token == "" {
		return unauthorized(c, "Refresh token not provided")
	}

	claims, err := b.parseToken(token)
	if err != nil {
		return forbidden(c, "Invalid refresh token")
	}

	var current models.User

	b.mu.Lock()
	userID, active := b.refreshTokens[token]
	acc, exists := b.accounts[claims.UserID]
	if exists {
		current = acc.user
	}
	b.mu.Unlock()
	if !active || !exists || userID != claims.UserID {
		return forbidden(c, "Invalid refresh token")
	}

	accessToken, err := b.signToken(current, b.accessTTL)
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, fiber.Map{"message": "Failed to issue tokens"})
	}
	return respond(c, fiber.StatusOK, fiber.Map{
		"accessToken": accessToken,
		"user":        current,
	})
}

func (b *Backend) logout(c *fiber.Ctx) error {
	if token := c.Cookies("refreshToken"); token != "" {
		b.mu.Lock()
		delete(b.refreshTokens, token)
		b.mu.Unlock()
	}

	b.setRefreshCookie(c, "", time.Now().Add(-time.Hour))
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

func (b *Backend) setRefreshCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Path:     "/",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (b *Backend) register(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if name == "" || password == "" {
		return badRequest(c, "Name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return badRequest(c, "Invalid email")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.accountByEmail(email) != nil {
		return respond(c, fiber.StatusConflict, fiber.Map{"error": "Email already registered"})
	}

	acc := b.newAccount(name, email, password)
	if file, err := c.FormFile("avatar"); err == nil {
		acc.user.Avatar = "/uploads/" + uuid.NewString() + filepath.Ext(file.Filename)
	}

	return respond(c, fiber.StatusCreated, fiber.Map{
		"message": "User registered",
		"user":    acc.user,
	})
}

// accountByEmail must be called with b.mu held.
func (b *Backend) accountByEmail(email string) *account {
	for _, acc := range b.accounts {
		if strings.EqualFold(acc.user.Email, email) {
			return acc
		}
	}
	return nil
}
