package cli

import (
	"github.com/anonto42/userdir/backend/internal/seed"
	"github.com/anonto42/userdir/backend/pkg/config"
	"github.com/anonto42/userdir/backend/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all users and follows with the demo data set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.LogLevel, cfg.Env)
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := openStores(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := seed.Run(cmd.Context(), st.users, st.follows); err != nil {
			return err
		}
		log.Info("finish.")
		return nil
	},
}
