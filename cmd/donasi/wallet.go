package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	apperrors "donasi/internal/errors"
	"donasi/internal/models"
	"donasi/internal/services/wizard"
)

// interruptible cancels the returned context on Ctrl-C so a wizard in flight
// is abandoned cleanly.
func interruptible(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

func parseMethod(s string) models.Method {
	m, _ := models.ParseMethod(s)
	return m
}

func (e *env) users(c *cli.Context) error {
	list := e.directory.List
	if c.Bool("refresh") {
		list = e.directory.Reconcile
	}
	entries, err := list(c.Context)
	if err != nil {
		return err
	}

	tw := newTable(e.out, "ID", "NAME", "EMAIL", "SALDO")
	for _, u := range entries {
		balance := rupiah(u.Balance)
		if u.Pending != 0 {
			balance += " (unconfirmed)"
		}
		row(tw, u.ID, u.Name, u.Email, balance)
	}
	return tw.Flush()
}

func (e *env) topUp(c *cli.Context) error {
	ctx, cancel := interruptible(c)
	defer cancel()

	w := wizard.NewTopUp(ctx, e.ledger)
	defer w.Close()

	if err := w.ChooseMethod(parseMethod(c.String("method")), strings.ToLower(c.String("provider")), c.String("card")); err != nil {
		return err
	}
	res, err := w.Submit(c.String("amount"))
	if err != nil {
		return err
	}
	e.printResult("Top-up", res)
	return nil
}

func (e *env) withdraw(c *cli.Context) error {
	ctx, cancel := interruptible(c)
	defer cancel()

	w := wizard.NewWithdrawal(ctx, e.ledger, e.session)
	defer w.Close()

	if err := w.ChooseMethod(parseMethod(c.String("method"))); err != nil {
		return err
	}
	if err := w.SetDetails(strings.ToLower(c.String("provider")), c.String("account"), c.String("amount")); err != nil {
		return err
	}
	pin, err := e.valueOrAsk(c.String("pin"), "PIN")
	if err != nil {
		return err
	}
	res, err := w.Submit(pin)
	if err != nil {
		return err
	}
	e.printResult("Withdrawal", res)
	return nil
}

func (e *env) donate(c *cli.Context) error {
	ctx, cancel := interruptible(c)
	defer cancel()

	recipient, err := e.recipient(ctx, c.String("to"))
	if err != nil {
		return err
	}

	w := wizard.NewDonation(ctx, e.ledger, e.session)
	defer w.Close()

	res, err := w.Submit(recipient.ID, c.String("amount"), c.String("message"))
	if err != nil {
		return err
	}
	e.printResult("Donation to "+recipient.Name, res)
	return nil
}

// recipient resolves an id or an email address through the directory.
func (e *env) recipient(ctx context.Context, to string) (models.User, error) {
	to = strings.TrimSpace(to)
	if id, err := strconv.ParseInt(to, 10, 64); err == nil {
		entry, err := e.directory.Lookup(ctx, id)
		return entry.User, err
	}

	entries, err := e.directory.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Email, to) {
			return entry.User, nil
		}
	}
	return models.User{}, apperrors.ErrRecipientNotFound
}

func (e *env) history(c *cli.Context) error {
	entries, err := e.ledger.ListHistory(c.Context)
	if err != nil {
		return err
	}

	tw := newTable(e.out, "TIME", "TYPE", "SOURCE", "AMOUNT", "REF")
	for _, h := range entries {
		ref := "-"
		if h.TransactionID != nil {
			ref = *h.TransactionID
		}
		row(tw, timestamp(h.Time), h.Kind, h.Source, rupiah(h.Signed()), ref)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pending, err := e.ledger.PendingHistory(c.Context)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		fmt.Fprintf(e.out, "Pending history entries: %d. Run \"donasi reconcile\" to send them.\n", len(pending))
	}
	return nil
}

func (e *env) reconcile(c *cli.Context) error {
	report, err := e.ledger.ReconcileHistory(c.Context)
	if err != nil {
		return err
	}
	if report.Resubmitted == 0 && report.Failed == 0 {
		fmt.Fprintln(e.out, "Nothing to resend.")
		return nil
	}
	fmt.Fprintf(e.out, "Resent %d history entries, %d still pending.\n", report.Resubmitted, report.Remaining)
	return nil
}
