package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/gaiola-watcher/internal/auth"
	"github.com/example/gaiola-watcher/internal/bookings"
	"github.com/example/gaiola-watcher/internal/config"
	"github.com/example/gaiola-watcher/internal/db"
	"github.com/example/gaiola-watcher/internal/gaiola"
	"github.com/example/gaiola-watcher/internal/migrate"
	"github.com/example/gaiola-watcher/internal/monitor"
	"github.com/example/gaiola-watcher/internal/notify"
	"github.com/example/gaiola-watcher/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the availability monitor + web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for serve")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			store := bookings.NewPostgresStore(d)

			client := gaiola.NewClient(cfg.WebDriverURL)
			adapter := gaiola.NewAdapter(client, cfg.BookingURL)
			if err := adapter.Open(ctx); err != nil {
				return fmt.Errorf("open browser session: %w", err)
			}
			defer func() { _ = adapter.Close(context.Background()) }()

			var notifier notify.Notifier = notify.Discard{}
			if cfg.TelegramToken != "" {
				notifier = notify.NewTelegram(cfg.TelegramToken)
			}

			registry := monitor.NewRegistry()
			mon := monitor.New(adapter, registry, store, notifier, monitor.Options{
				Interval:         cfg.PollInterval,
				Settle:           cfg.SettleDelay,
				ExpectedLocation: cfg.BookingPageToken,
			})
			go func() { _ = mon.Run(ctx) }()

			ws := &web.Server{Auth: authStore, Monitor: mon, Bookings: store}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
