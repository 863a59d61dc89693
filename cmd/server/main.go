package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"hackhub/internal/app"
	"hackhub/internal/identity/revocation"
	identitysvc "hackhub/internal/identity/service"
	userstore "hackhub/internal/identity/store/user"
	"hackhub/internal/identity/token"
	"hackhub/internal/platform/config"
	"hackhub/internal/platform/httpserver"
	"hackhub/internal/platform/logger"
	"hackhub/internal/platform/postgres"
	platformredis "hackhub/internal/platform/redis"
	id "hackhub/pkg/domain"
)

func main() {
	cliApp := &cli.App{
		Name:  "hackhub",
		Usage: "hackathon admission and evaluation server",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			userCommand(),
			tokenCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.SlogLevel()), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "admin-email",
				Usage: "create an ADMIN account on start and print a token for it (in-memory dev mode)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := c.Context

			a, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(context.WithoutCancel(ctx)); err != nil {
					log.Error("close backends", "error", err)
				}
			}()

			if email := c.String("admin-email"); email != "" {
				if err := seedAdmin(ctx, a, cfg, email); err != nil {
					return err
				}
			}

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
			}
			srv := httpserver.New(cfg.Server, a.Router)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.InfoContext(gctx, "starting hackhub", "addr", ln.Addr().String(), "in_memory", cfg.InMemory())
				err := httpserver.Serve(gctx, srv, ln, cfg.Server.ShutdownTimeout)
				log.InfoContext(context.WithoutCancel(gctx), "http server stopped")
				return err
			})
			g.Go(func() error {
				return a.Worker.Run(gctx)
			})
			return g.Wait()
		},
	}
}

func seedAdmin(ctx context.Context, a *app.App, cfg config.Config, email string) error {
	u, err := a.Users.CreateUser(ctx, email, "Administrator", id.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	signed, err := a.Tokens.GenerateAccessToken(u.ID, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("seed admin token: %w", err)
	}
	fmt.Printf("admin %s\ntoken %s\n", u.ID, signed)
	return nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					cfg, log, err := loadConfig()
					if err != nil {
						return err
					}
					if cfg.InMemory() {
						return errors.New("DATABASE_URL is required for migrations")
					}
					db, err := postgres.Open(c.Context, cfg.Database, log)
					if err != nil {
						return err
					}
					defer db.Close()

					applied, err := postgres.MigrateUp(c.Context, db, log)
					if err != nil {
						return err
					}
					if len(applied) == 0 {
						fmt.Println("schema is up to date")
						return nil
					}
					for _, v := range applied {
						fmt.Printf("applied %s\n", v)
					}
					return nil
				},
			},
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "manage accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "role", Value: string(id.RoleParticipant), Usage: "PARTICIPANT, ORGANIZER, JUDGE or ADMIN"},
				},
				Action: func(c *cli.Context) error {
					cfg, log, err := loadConfig()
					if err != nil {
						return err
					}
					if cfg.InMemory() {
						return errors.New("DATABASE_URL is required to persist accounts")
					}
					role, err := id.ParseRole(c.String("role"))
					if err != nil {
						return err
					}
					db, err := postgres.Open(c.Context, cfg.Database, log)
					if err != nil {
						return err
					}
					defer db.Close()

					users := identitysvc.New(userstore.NewPostgres(db),
						identitysvc.WithLogger(log),
						identitysvc.WithTx(postgres.NewTxManager(db, postgres.WithTxLogger(log))),
					)
					u, err := users.CreateUser(c.Context, c.String("email"), c.String("name"), role)
					if err != nil {
						return err
					}
					fmt.Printf("%s\t%s\t%s\n", u.ID, u.Email, u.Role)
					return nil
				},
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "development bearer tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "mint an access token for a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-id", Required: true},
				},
				Action: func(c *cli.Context) error {
					cfg, _, err := loadConfig()
					if err != nil {
						return err
					}
					userID, err := id.ParseUserID(c.String("user-id"))
					if err != nil {
						return err
					}
					jwts := token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
					signed, err := jwts.GenerateAccessToken(userID, cfg.Auth.TokenTTL)
					if err != nil {
						return err
					}
					fmt.Println(signed)
					return nil
				},
			},
			{
				Name:  "revoke",
				Usage: "add a token to the revocation list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
				},
				Action: func(c *cli.Context) error {
					cfg, _, err := loadConfig()
					if err != nil {
						return err
					}
					rdb, err := platformredis.Dial(c.Context, cfg.Redis)
					if err != nil {
						return err
					}
					if rdb == nil {
						return errors.New("REDIS_URL is required to revoke tokens")
					}
					defer rdb.Close()

					jwts := token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
					claims, err := jwts.ValidateToken(c.String("token"))
					if err != nil {
						return err
					}
					if err := revocation.NewRedisTRL(rdb.Redis()).RevokeToken(c.Context, claims.ID, jwts.ExpiresIn(claims)); err != nil {
						return fmt.Errorf("revoke token: %w", err)
					}
					fmt.Printf("revoked %s\n", claims.ID)
					return nil
				},
			},
		},
	}
}
