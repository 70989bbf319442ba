package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func (e *env) listDonations(c *cli.Context) error {
	me, err := e.session.RequireUser()
	if err != nil {
		return err
	}
	list, err := e.donations.List(c.Context)
	if err != nil {
		return err
	}

	tw := newTable(e.out, "ID", "TIME", "FROM", "TO", "AMOUNT", "MESSAGE")
	for _, d := range list {
		from, to := "-", "-"
		if d.Sender != nil {
			from = d.Sender.Name
		}
		if d.Recipient != nil {
			to = d.Recipient.Name
		}
		amount := rupiah(d.Amount)
		if d.SentBy(me.ID) {
			amount = rupiah(-d.Amount)
		}
		row(tw, d.ID, timestamp(d.Time), from, to, amount, d.Message)
	}
	return tw.Flush()
}

func (e *env) editDonation(c *cli.Context) error {
	d, err := e.donations.EditMessage(c.Context, c.Int64("id"), c.String("message"))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Donation %d updated: %q\n", d.ID, d.Message)
	return nil
}

func (e *env) deleteDonation(c *cli.Context) error {
	msg, err := e.donations.Delete(c.Context, c.Int64("id"))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, msg)
	return nil
}
