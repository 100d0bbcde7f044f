package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/babushkai/saas-marketplace/internal/app"
	"github.com/babushkai/saas-marketplace/internal/database"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := app.Build(cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Error("error closing resources", zap.Error(err))
				}
			}()

			migrate, _ := cmd.Flags().GetBool("migrate")
			if migrate {
				if err := database.Migrate(a.DB); err != nil {
					return err
				}
				log.Info("database migrations completed")
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting server", zap.String("addr", cfg.App.Port))
				errCh <- a.HTTP.Listen(cfg.App.Port)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				log.Info("shutting down server", zap.String("signal", sig.String()))
			}

			if err := a.HTTP.ShutdownWithTimeout(shutdownTimeout); err != nil {
				log.Error("error during shutdown", zap.Error(err))
			}
			log.Info("server gracefully stopped")
			return nil
		},
	}

	cmd.Flags().String("port", "", "Listen address, overrides APP_PORT (e.g. :8080)")
	cmd.Flags().Bool("migrate", true, "Run schema migrations before serving")
	_ = v.BindPFlag("APP_PORT", cmd.Flags().Lookup("port"))
	return cmd
}
