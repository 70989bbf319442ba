/*
Package ledger submits balance actions for the signed-in user and reads their
history.

Top-ups and withdrawals are two writes: the new absolute balance goes to
PUT /api/users/{id}, then a history entry to POST /api/history. A failed
balance write aborts the action. A failed history write does not undo the
balance change; the entry is journaled in the history outbox and the result
is flagged HistoryPending. ReconcileHistory re-posts journaled entries with
their original idempotency key when the user asks for it.

Donations are a single POST /api/transaksi. The backend moves both balances
and writes both history entries; the client patches the sender's balance and
the recipient's directory entry locally.

Usage:

	svc := ledger.NewService(client, sess, outbox, gateway, directory, nil, log)

	res, err := svc.TopUp(ctx, ledger.TopUpRequest{
	    Amount:   50000,
	    Method:   models.MethodBank,
	    Provider: "bca",
	})

	res, err = svc.Donate(ctx, ledger.DonateRequest{RecipientID: 2, Amount: 30000})
*/
package ledger
