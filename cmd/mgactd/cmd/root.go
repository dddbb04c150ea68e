package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/mergington/activities/pkg/clog"
	"github.com/mergington/activities/pkg/config"
	"github.com/mergington/activities/pkg/mgapi"
	"github.com/mergington/activities/pkg/mgapi/metrics"
	"github.com/mergington/activities/pkg/mgdb"
	"github.com/mergington/activities/pkg/seed"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mgactd",
	Short: "Run the Mergington activities server",
	Long: `mgactd serves the Mergington High School extracurricular activities API
and the sign-up page. Students can list activities, sign up for one activity
and unregister from it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clog.UseAsApexDefault()
		mustLoadConfig()
		if err := configureLogging(logFile); err != nil {
			log.Fatalf("%s", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := Run(cmd.Context()); err != nil {
			log.Fatalf("mgactd: %s", err)
		}
	},
}

// configureLogging applies MG_LOG_LEVEL and sends the global log to path, or
// to MG_LOG_FILE when path is empty. With neither set the log stays on stdout.
func configureLogging(path string) error {
	if err := clog.SetGlobalLoggerLevelFromString(config.GetKeyWithDefault(config.KeyLogLevel, "info")); err != nil {
		return errors.Wrapf(err, "invalid %s", config.KeyLogLevel)
	}

	if path == "" {
		path = config.GetKey(config.KeyLogFile)
	}

	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "unable to open log file %s", path)
	}

	clog.SetGlobalOutput(f)
	return nil
}

// Run seeds the activity store, starts the server and blocks until ctx is done
// or the process gets SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	activities, err := seed.Load(config.GetKey(config.KeySeedFile))
	if err != nil {
		return err
	}

	activityStor, err := mgdb.OpenActivityStor(config.GetConfig(), activities)
	if err != nil {
		return err
	}

	e := mgapi.NewServer(mgapi.RouteOpts{
		ActivityStor: activityStor,
		Metrics:      metrics.New(),
		Logger:       clog.Default(),
		EnableAdmin:  config.GetBoolKeyWithDefault(config.KeyEnableAdmin, false),
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + config.GetKeyWithDefault(config.KeyPort, config.DefaultPort)
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}

func mustLoadConfig() {
	if cfgFile == "" {
		config.MustLoadFromDotenv()
		return
	}

	if _, err := config.Open(cfgFile); err != nil {
		log.Fatalf("%s", err)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .env/.yaml/.toml/.json (default is $MG_DOTENV_PATH or ~/.mergington/config.env)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append the log to this file instead of stdout (default is $MG_LOG_FILE)")
}
