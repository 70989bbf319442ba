package apitest

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"donasi/internal/models"
)

func (b *Backend) editProfile(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	if claimsFrom(c).UserID != id {
		return forbidden(c, "Cannot edit another user's profile")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return notFound(c, "User not found")
	}

	if newPin := c.FormValue("newPin"); newPin != "" {
		if acc.pinHash != nil && bcrypt.CompareHashAndPassword(acc.pinHash, []byte(c.FormValue("currentPin"))) != nil {
			return badRequest(c, "Incorrect current PIN")
		}
		if c.FormValue("confirmNewPin") != newPin {
			return badRequest(c, "PIN confirmation does not match")
		}
		acc.pinHash = mustHash(newPin)
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		acc.user.Name = name
	}
	if c.FormValue("clearAvatar") == "true" {
		acc.user.Avatar = ""
	} else if file, err := c.FormFile("avatar"); err == nil {
		acc.user.Avatar = "/uploads/" + uuid.NewString() + filepath.Ext(file.Filename)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated",
		"user":    acc.user,
	})
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
}
