package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"planeat-api/internal/agenda"
	"planeat-api/internal/db"
	"planeat-api/internal/esx"
	"planeat-api/internal/httpx/auth"
	"planeat-api/internal/httpx/recipes"
	"planeat-api/internal/seed"
	"planeat-api/internal/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, drv, closeFn, err := opts.open()
			if err != nil {
				return err
			}
			defer closeFn()
			if err := db.Migrate(cmd.Context(), drv); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return err
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, recipes and agenda entries from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := seed.Load(file)
			if err != nil {
				return err
			}
			st, svc, _, closeFn, err := opts.open()
			if err != nil {
				return err
			}
			defer closeFn()
			res, err := seed.Apply(cmd.Context(), st, svc, f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}

// NewReindexCommand creates the reindex command.
func NewReindexCommand(opts *RootOptions) *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the recipe search index from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batch <= 0 {
				return fmt.Errorf("reindex: --batch must be positive, got %d", batch)
			}
			cfg := opts.Config()
			es, esClose, err := esx.Open(cfg)
			if err != nil {
				return err
			}
			defer esClose()
			if es == nil {
				return errors.New("reindex: ES_ADDRS is not set")
			}
			st, _, _, closeFn, err := opts.open()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			if err := esx.EnsureIndex(ctx, es, cfg.ES.RecipeIndex); err != nil {
				return err
			}
			indexed := 0
			for offset := 0; ; offset += batch {
				page, err := st.ListRecipes(ctx, store.RecipeFilter{}, store.Page{Limit: batch, Offset: offset, Sort: "id"})
				if err != nil {
					return err
				}
				for _, r := range page {
					d, err := st.RecipeDetail(ctx, r.ID)
					if err != nil {
						return err
					}
					if err := esx.IndexRecipe(ctx, es, cfg.ES.RecipeIndex, recipes.Doc(d)); err != nil {
						return fmt.Errorf("reindex %s: %w", r.ID, err)
					}
					indexed++
				}
				if len(page) < batch {
					break
				}
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"index": cfg.ES.RecipeIndex, "indexed": indexed})
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 200, "recipes per page")
	return cmd
}

// NewAuditCommand creates the audit command. It exits non-zero when the
// report is not clean.
func NewAuditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check schedule entries for missing recipes, missing days and duplicate days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, _, closeFn, err := opts.open()
			if err != nil {
				return err
			}
			defer closeFn()
			rep, err := svc.Audit(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if !rep.Clean() {
				return errors.New("audit: integrity problems found")
			}
			return nil
		},
	}
}

// NewAgendaCommand creates the agenda command.
func NewAgendaCommand(opts *RootOptions) *cobra.Command {
	var username, date string
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print a user's recipes for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := agenda.ParseDate(date)
			if err != nil {
				return err
			}
			st, svc, _, closeFn, err := opts.open()
			if err != nil {
				return err
			}
			defer closeFn()
			u, err := st.UserByUsername(cmd.Context(), username)
			if err != nil {
				return fmt.Errorf("user %q: %w", username, err)
			}
			items, err := svc.DayAgenda(cmd.Context(), u.ID, d)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// NewTokenCommand creates the token command, which mints an access token for
// an existing user.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		username string
		roles    []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, _, _, closeFn, err := opts.open()
			if err != nil {
				return err
			}
			defer closeFn()
			u, err := st.UserByUsername(cmd.Context(), username)
			if err != nil {
				return fmt.Errorf("user %q: %w", username, err)
			}
			tok, err := auth.SignAccess(opts.Config(), u.ID, roles)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "username")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role claim, repeatable (e.g. admin)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
