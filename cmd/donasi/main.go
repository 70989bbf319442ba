// Command donasi is a terminal client for the donation service: sign in,
// top up, withdraw, donate to other users and manage the profile.
package main

import (
	"fmt"
	"os"

	apperrors "donasi/internal/errors"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, nil)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", apperrors.UserMessage(err))
		os.Exit(1)
	}
}
