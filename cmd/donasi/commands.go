package main

import "github.com/urfave/cli/v2"

func (e *env) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "login",
			Usage:  "sign in and remember the session",
			Action: e.login,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
				&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "asked for when omitted"},
			},
		},
		{
			Name:   "logout",
			Usage:  "sign out and forget the saved session",
			Action: e.logout,
		},
		{
			Name:   "whoami",
			Usage:  "show the signed-in user and balance",
			Action: e.whoami,
		},
		{
			Name:   "register",
			Usage:  "create an account",
			Action: e.register,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Usage: "asked for when omitted"},
				&cli.StringFlag{Name: "confirm-password", Usage: "asked for when omitted"},
				&cli.PathFlag{Name: "avatar", Usage: "image file"},
				&cli.BoolFlag{Name: "login", Usage: "sign in after registering"},
			},
		},
		{
			Name:   "users",
			Usage:  "list the people you can donate to",
			Action: e.users,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "refresh", Usage: "reload balances from the server"},
			},
		},
		{
			Name:   "topup",
			Usage:  "add money to your balance",
			Action: e.topUp,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Usage: "bank, ewallet or card", Required: true},
				&cli.StringFlag{Name: "provider", Usage: "bca, mandiri, bni, ovo, gopay or dana"},
				&cli.StringFlag{Name: "card", Usage: "card payment method reference"},
				&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Required: true},
			},
		},
		{
			Name:   "withdraw",
			Usage:  "move money out to a bank account or e-wallet",
			Action: e.withdraw,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Usage: "bank or ewallet", Required: true},
				&cli.StringFlag{Name: "provider", Required: true},
				&cli.StringFlag{Name: "account", Usage: "destination account number", Required: true},
				&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Required: true},
				&cli.StringFlag{Name: "pin", Usage: "asked for when omitted"},
			},
		},
		{
			Name:   "donate",
			Usage:  "send money to another user",
			Action: e.donate,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "to", Usage: "recipient id or email", Required: true},
				&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Required: true},
				&cli.StringFlag{Name: "message", Usage: "up to 100 characters"},
			},
		},
		{
			Name:   "history",
			Usage:  "show your balance history",
			Action: e.history,
		},
		{
			Name:   "reconcile",
			Usage:  "resend history entries that failed to save",
			Action: e.reconcile,
		},
		{
			Name:  "donations",
			Usage: "list and manage your donations",
			Subcommands: []*cli.Command{
				{
					Name:   "list",
					Usage:  "donations you sent or received",
					Action: e.listDonations,
				},
				{
					Name:   "edit",
					Usage:  "change the message of a donation you sent",
					Action: e.editDonation,
					Flags: []cli.Flag{
						&cli.Int64Flag{Name: "id", Required: true},
						&cli.StringFlag{Name: "message", Required: true},
					},
				},
				{
					Name:   "delete",
					Usage:  "delete a donation you sent",
					Action: e.deleteDonation,
					Flags: []cli.Flag{
						&cli.Int64Flag{Name: "id", Required: true},
					},
				},
			},
		},
		{
			Name:   "profile",
			Usage:  "change your name, avatar or PIN",
			Action: e.editProfile,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name"},
				&cli.PathFlag{Name: "avatar", Usage: "image file"},
				&cli.BoolFlag{Name: "clear-avatar"},
				&cli.StringFlag{Name: "current-pin"},
				&cli.StringFlag{Name: "new-pin"},
				&cli.StringFlag{Name: "confirm-pin"},
			},
		},
	}
}
