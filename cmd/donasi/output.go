package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"donasi/internal/services/ledger"
)

// rupiah formats a whole-Rupiah amount with dot thousands separators.
func rupiah(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return sign + "Rp " + b.String()
}

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (e *env) printResult(action string, res *ledger.Result) {
	fmt.Fprintf(e.out, "%s successful. Balance: %s\n", action, rupiah(res.Balance))
	if res.PaymentRef != "" {
		fmt.Fprintf(e.out, "Payment reference: %s\n", res.PaymentRef)
	}
	if res.HistoryPending {
		fmt.Fprintln(e.out, "The history entry could not be saved yet. Run \"donasi reconcile\" to send it again.")
	}
}
