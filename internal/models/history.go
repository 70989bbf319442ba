package models

import "time"

// HistoryKind tells whether an entry added to or removed from the balance.
type HistoryKind string

const (
	KindIncome  HistoryKind = "PEMASUKAN"
	KindExpense HistoryKind = "PENGELUARAN"
)

// HistorySource names the action that moved the balance.
type HistorySource string

const (
	SourceTopUp      HistorySource = "TOPUP"
	SourceWithdrawal HistorySource = "PENARIKAN"
	SourceDonation   HistorySource = "DONASI"
)

// HistoryEntry is one line of a user's balance ledger.
type HistoryEntry struct {
	ID            int64         `json:"id,omitempty"`
	UserID        int64         `json:"userId"`
	Amount        int64         `json:"jumlah"`
	Kind          HistoryKind   `json:"jenis"`
	Source        HistorySource `json:"sumber"`
	TransactionID *string       `json:"transaksiId"`
	Time          time.Time     `json:"waktu"`
}

// Signed returns the amount with a negative sign for expenses.
func (h HistoryEntry) Signed() int64 {
	if h.Kind == KindExpense {
		return -h.Amount
	}
	return h.Amount
}
