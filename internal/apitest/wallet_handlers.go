package apitest

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"donasi/internal/models"
)

func (b *Backend) listUsers(c *fiber.Ctx) error {
	b.mu.Lock()
	users := make([]models.User, 0, len(b.accounts))
	for _, acc := range b.accounts {
		users = append(users, acc.user)
	}
	b.mu.Unlock()

	sortUsers(users)
	return respond(c, fiber.StatusOK, users)
}

func (b *Backend) updateBalance(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	if claimsFrom(c).UserID != id {
		return forbidden(c, "Cannot update another user's balance")
	}

	var input struct {
		Balance  *int64 `json:"saldo"`
		Amount   int64  `json:"amount"`
		PIN      string `json:"pin"`
		Method   string `json:"method"`
		Provider string `json:"provider"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if input.Balance == nil {
		return badRequest(c, "saldo is required")
	}
	if *input.Balance < 0 {
		return badRequest(c, "Saldo tidak mencukupi")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return notFound(c, "User not found")
	}
	if input.PIN != "" {
		if acc.pinHash == nil {
			return badRequest(c, "PIN has not been set")
		}
		if bcrypt.CompareHashAndPassword(acc.pinHash, []byte(input.PIN)) != nil {
			return badRequest(c, "Incorrect PIN")
		}
	}

	acc.user.Balance = *input.Balance
	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "Saldo updated",
		"user":    acc.user,
	})
}

func (b *Backend) createHistory(c *fiber.Ctx) error {
	var entry models.HistoryEntry
	if err := c.BodyParser(&entry); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if entry.UserID != claimsFrom(c).UserID {
		return forbidden(c, "Cannot write another user's history")
	}
	if entry.Amount <= 0 || entry.Kind == "" || entry.Source == "" {
		return badRequest(c, "jumlah, jenis and sumber are required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextHistoryID++
	entry.ID = b.nextHistoryID
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	b.history = append(b.history, entry)
	return respond(c, fiber.StatusCreated, entry)
}

func (b *Backend) listHistory(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	if claimsFrom(c).UserID != userID {
		return forbidden(c, "Cannot read another user's history")
	}

	b.mu.Lock()
	entries := b.historyOf(userID)
	b.mu.Unlock()
	return respond(c, fiber.StatusOK, entries)
}
