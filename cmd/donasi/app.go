package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"donasi/internal/api"
	"donasi/internal/config"
	"donasi/internal/logger"
	"donasi/internal/repositories"
	"donasi/internal/repositories/cache"
	"donasi/internal/services/account"
	"donasi/internal/services/directory"
	"donasi/internal/services/donation"
	"donasi/internal/services/ledger"
	"donasi/internal/services/payment"
	"donasi/internal/services/profile"
	"donasi/internal/session"
)

// sessionTTL bounds how long a persisted refresh cookie is kept in Redis.
const sessionTTL = 7 * 24 * time.Hour

// env holds everything a command needs. It is built once per run in the
// app's Before hook.
type env struct {
	in        *bufio.Reader
	out       io.Writer
	transport http.RoundTripper

	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	session *session.Manager
	redis   *redis.Client

	directory *directory.Service
	ledger    *ledger.Service
	donations *donation.Service
	profile   *profile.Service
	account   *account.Service
	outbox    repositories.HistoryOutbox

	closers []func() error
}

func newApp(in io.Reader, out io.Writer, transport http.RoundTripper) *cli.App {
	e := &env{
		in:        bufio.NewReader(in),
		out:       out,
		transport: transport,
	}

	return &cli.App{
		Name:      "donasi",
		Usage:     "send and receive donations from the terminal",
		Reader:    in,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML configuration file",
				EnvVars: []string{"DONASI_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "name of the saved session to use",
				Value: "default",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log requests to stderr",
			},
		},
		Before:   e.setup,
		After:    e.teardown,
		Commands: e.commands(),
		// errors are printed once by main
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func (e *env) setup(c *cli.Context) error {
	switch c.Args().First() {
	case "", "help", "h":
		return nil
	}

	if path := c.String("config"); path != "" {
		if err := os.Setenv("DONASI_CONFIG", path); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	e.cfg = cfg

	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = "debug"
	} else if level == "info" {
		// info lines would interleave with command output
		level = "warn"
	}
	e.log = logger.NewWithConfig(logger.Config{Level: level, Pretty: cfg.Log.Pretty})

	opts := []api.Option{}
	if e.transport != nil {
		opts = append(opts, api.WithTransport(e.transport))
	}
	e.client, err = api.NewClient(api.Config{BaseURL: cfg.ServerURL, Timeout: cfg.HTTPTimeout}, e.log, opts...)
	if err != nil {
		return err
	}

	store, err := e.sessionStore(c.String("profile"))
	if err != nil {
		return err
	}
	e.session = session.NewManager(e.client, store, e.log)
	e.client.SetTokenSource(e.session)

	outbox, closeOutbox, err := repositories.OpenOutbox(cfg.Outbox, e.log)
	if err != nil {
		return err
	}
	e.outbox = outbox
	e.closers = append(e.closers, closeOutbox)

	e.directory = directory.NewService(e.client, e.session, e.directoryCache(), cfg.Redis.DirectoryTTL, e.log)
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, nil, e.log)
	e.ledger = ledger.NewService(e.client, e.session, outbox, gateway, e.directory, nil, e.log)
	e.donations = donation.NewService(e.client, e.session, e.log)
	e.profile = profile.NewService(e.client, e.session, e.log)
	e.account = account.NewService(e.client, e.log)

	state := e.session.Start(c.Context)
	e.log.Debug().Str("state", state.String()).Msg("session started")
	return nil
}

func (e *env) teardown(*cli.Context) error {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Warn().Err(err).Msg("close failed")
		}
	}
	e.closers = nil
	return nil
}

func (e *env) redisClient() *redis.Client {
	if e.redis == nil {
		e.redis = cache.NewRedisClient(e.cfg.Redis)
		e.closers = append(e.closers, e.redis.Close)
	}
	return e.redis
}

func (e *env) sessionStore(profile string) (session.Store, error) {
	var store session.Store
	switch e.cfg.Session.Backend {
	case "redis":
		store = session.NewRedisStore(e.redisClient(), session.Key(profile), sessionTTL)
	case "memory":
		store = session.NewMemoryStore()
	case "", "file":
		path := e.cfg.Session.File
		if profile != "" && profile != "default" {
			path += "." + profile
		}
		store = session.NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown session backend %q", e.cfg.Session.Backend)
	}

	if e.cfg.Session.Key == "" {
		return store, nil
	}
	return session.NewSealedStore(store, e.cfg.Session.Key)
}

// directoryCache shares the recipient list between runs through Redis when
// it is enabled and reachable.
func (e *env) directoryCache() cache.Cache {
	if !e.cfg.Redis.Enabled {
		return cache.NewMemoryCache()
	}

	svc := cache.NewCacheService(e.redisClient(), e.cfg.Redis.DirectoryTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.HealthCheck(ctx); err != nil {
		e.log.Warn().Err(err).Msg("redis unavailable, caching recipients in memory")
		return cache.NewMemoryCache()
	}
	return svc
}
