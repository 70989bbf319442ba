package apitest

import (
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"donasi/internal/models"
)

func (b *Backend) createDonation(c *fiber.Ctx) error {
	var input struct {
		SenderID    int64  `json:"pengirimId"`
		RecipientID int64  `json:"penerimaId"`
		Amount      int64  `json:"jumlahDonasi"`
		Message     string `json:"pesanDonasi"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if input.SenderID != claimsFrom(c).UserID {
		return forbidden(c, "Cannot donate on behalf of another user")
	}
	if input.Amount <= 0 {
		return badRequest(c, "jumlahDonasi must be positive")
	}
	if input.SenderID == input.RecipientID {
		return badRequest(c, "Cannot donate to yourself")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sender, ok := b.accounts[input.SenderID]
	if !ok {
		return notFound(c, "Sender not found")
	}
	recipient, ok := b.accounts[input.RecipientID]
	if !ok {
		return notFound(c, "Recipient not found")
	}
	if sender.user.Balance < input.Amount {
		return respond(c, fiber.StatusBadRequest, fiber.Map{"message": "Saldo tidak mencukupi"})
	}

	sender.user.Balance -= input.Amount
	recipient.user.Balance += input.Amount

	now := time.Now().UTC()
	b.nextDonationID++
	d := models.Donation{
		ID:          b.nextDonationID,
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		Amount:      input.Amount,
		Message:     input.Message,
		Time:        now,
	}
	b.donations = append(b.donations, d)

	ref := strconv.FormatInt(d.ID, 10)
	b.appendHistory(sender.user.ID, d.Amount, models.KindExpense, &ref, now)
	b.appendHistory(recipient.user.ID, d.Amount, models.KindIncome, &ref, now)

	return respond(c, fiber.StatusCreated, b.withProfiles(d))
}

// appendHistory must be called with b.mu held.
func (b *Backend) appendHistory(userID, amount int64, kind models.HistoryKind, ref *string, at time.Time) {
	b.nextHistoryID++
	b.history = append(b.history, models.HistoryEntry{
		ID:            b.nextHistoryID,
		UserID:        userID,
		Amount:        amount,
		Kind:          kind,
		Source:        models.SourceDonation,
		TransactionID: ref,
		Time:          at,
	})
}

// withProfiles must be called with b.mu held.
func (b *Backend) withProfiles(d models.Donation) models.Donation {
	if acc, ok := b.accounts[d.SenderID]; ok {
		u := acc.user
		d.Sender = &u
	}
	if acc, ok := b.accounts[d.RecipientID]; ok {
		u := acc.user
		d.Recipient = &u
	}
	return d
}

func (b *Backend) listDonations(c *fiber.Ctx) error {
	b.mu.Lock()
	out := make([]models.Donation, 0, len(b.donations))
	for _, d := range b.donations {
		out = append(out, b.withProfiles(d))
	}
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return respond(c, fiber.StatusOK, out)
}

// donationIndex must be called with b.mu held.
func (b *Backend) donationIndex(c *fiber.Ctx) (int, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return -1, badRequest(c, "Invalid transaksi id")
	}
	for i, d := range b.donations {
		if d.ID == id {
			if d.SenderID != claimsFrom(c).UserID {
				return -1, forbidden(c, "Only the sender can change this transaksi")
			}
			return i, nil
		}
	}
	return -1, notFound(c, "Transaksi not found")
}

func (b *Backend) updateDonation(c *fiber.Ctx) error {
	var input struct {
		Message string `json:"pesanDonasi"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i, err := b.donationIndex(c)
	if i < 0 {
		return err
	}
	b.donations[i].Message = input.Message
	return respond(c, fiber.StatusOK, fiber.Map{
		"message":   "Transaksi updated",
		"transaksi": b.withProfiles(b.donations[i]),
	})
}

func (b *Backend) deleteDonation(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, err := b.donationIndex(c)
	if i < 0 {
		return err
	}
	b.donations = append(b.donations[:i], b.donations[i+1:]...)
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Transaksi berhasil dihapus"})
}
