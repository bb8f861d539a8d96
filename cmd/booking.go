package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/gaiola-watcher/internal/bookings"
	"github.com/example/gaiola-watcher/internal/config"
	"github.com/example/gaiola-watcher/internal/db"
	"github.com/example/gaiola-watcher/internal/migrate"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newBookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Inspect and delete stored booking records",
	}
	cmd.AddCommand(newBookingListCmd())
	cmd.AddCommand(newBookingFindCmd())
	cmd.AddCommand(newBookingDeleteCmd())
	return cmd
}

// openStore picks the Postgres store when DATABASE_URL is set and the
// local file store otherwise. The caller must invoke the returned
// cleanup.
func openStore(ctx context.Context, cfg config.Config) (bookings.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		fs, err := bookings.NewFileStore(cfg.BookingsDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return bookings.NewPostgresStore(d), d.Close, nil
}

func newBookingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored booking records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			recs, err := store.List(ctx)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Subject", "Code", "Created"})
			for _, r := range recs {
				t.AppendRow(table.Row{r.SubjectName, r.Code, r.CreatedAt.Format("2006-01-02 15:04")})
			}
			t.Render()
			return nil
		},
	}
}

func newBookingFindCmd() *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:   "find",
		Short: "Find the newest booking code for a subject name",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			code, err := store.FindByName(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, code)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "subject full name")
	_ = c.MarkFlagRequired("name")
	return c
}

func newBookingDeleteCmd() *cobra.Command {
	var name, code string

	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored booking record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := store.Delete(ctx, name, code)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("no record for %q with code %q", name, code)
			}
			fmt.Fprintf(os.Stdout, "deleted record for %q (code %s)\n", name, code)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "subject full name")
	c.Flags().StringVar(&code, "code", "", "confirmation code")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("code")
	return c
}
