// Package cli implements planeatctl, the operator command line for the
// planeat database: migrations, seeding, search reindexing and audits.
package cli

import (
	"encoding/json"
	"io"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/spf13/cobra"

	"planeat-api/internal/config"
	"planeat-api/internal/db"
	"planeat-api/internal/planner"
	"planeat-api/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
	cfg         *config.Config
}

// Config returns the environment config with flag overrides applied.
func (o *RootOptions) Config() *config.Config {
	if o.cfg == nil {
		o.cfg = config.FromEnv()
	}
	if o.DatabaseURL != "" {
		o.cfg.DB.URL = o.DatabaseURL
	}
	return o.cfg
}

// open returns a store and planner on the configured database. The caller
// must call the returned closer.
func (o *RootOptions) open() (*store.Store, *planner.Service, *entsql.Driver, func(), error) {
	drv, closeFn, err := db.Open(o.Config())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	st := store.New(drv)
	return st, planner.New(st), drv, closeFn, nil
}

// NewRootCommand creates the root command for planeatctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "planeatctl",
		Short:         "planeat operator tool",
		Long:          "Migrate, seed, reindex and audit the planeat database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "db", "", "database URL (overrides DATABASE_URL)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewReindexCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewAgendaCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
