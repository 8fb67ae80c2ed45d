package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/adminapi"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var Version = "dev"

func main() {
	var cfile string
	rootCmd := &cobra.Command{
		Use:     "storefront",
		Short:   "Storefront - product catalog with Telegram order notifications",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is fine, the environment may already be set
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfile, "config", "c", "", "config file (default storefront.yml)")

	rootCmd.AddCommand(serveCmd(&cfile))
	rootCmd.AddCommand(checkCmd(&cfile))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(cfile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the http server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfile)
			if err != nil {
				return err
			}
			application := app.NewApplication(cfg)
			if err := application.Init(); err != nil {
				return err
			}
			defer application.Release()

			server := webserver.Init(cfg)
			adminapi.Init(application)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(server.Start)
			g.Go(func() error {
				<-ctx.Done()
				zap.L().Info("shutting down web server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func checkCmd(cfile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the store files can be read",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfile)
			if err != nil {
				return err
			}
			// report a corrupt products file instead of refusing to start
			cfg.Storage.IgnoreCorrupt = true
			application := app.NewApplication(cfg)
			if err := application.Init(); err != nil {
				return err
			}
			defer application.Release()

			failed := false
			for name, check := range map[string]func() error{
				cfg.GetProductsFile(): application.Catalog().Check,
				cfg.GetSettingsFile(): application.Settings().Check,
			} {
				if err := check(); err != nil {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", name)
			}
			if failed {
				return errors.New("store check failed")
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
