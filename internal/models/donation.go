package models

import "time"

// Donation is a balance transfer from one user to another ("transaksi").
// Listings embed the sender and recipient profiles.
type Donation struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"pengirimId"`
	RecipientID int64     `json:"penerimaId"`
	Amount      int64     `json:"jumlahDonasi"`
	Message     string    `json:"pesanDonasi,omitempty"`
	Time        time.Time `json:"waktu"`

	Sender    *User `json:"pengirim,omitempty"`
	Recipient *User `json:"penerima,omitempty"`
}

// SentBy reports whether userID is the sender. Only the sender may edit or
// delete a donation.
func (d Donation) SentBy(userID int64) bool {
	return d.SenderID == userID
}

// Involves reports whether userID sent or received the donation.
func (d Donation) Involves(userID int64) bool {
	return d.SenderID == userID || d.RecipientID == userID
}
