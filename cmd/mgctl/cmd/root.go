package cmd

import (
	"os"

	"github.com/mergington/activities/pkg/config"
	"github.com/mergington/activities/pkg/mgclient"
	"github.com/spf13/cobra"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mgctl",
	Short: "Command line client for the Mergington activities server",
	Long: `mgctl lists activities and signs students up for, or unregisters them
from, an activity on a running mgactd server.`,
}

func newClient() *mgclient.Client {
	if serverURL == "" {
		config.MustLoadFromDotenv()
		serverURL = config.GetKeyWithDefault(config.KeyServerURL, config.DefaultServerURL)
	}

	return mgclient.New(serverURL)
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
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server url (default is $MG_SERVER_URL or http://localhost:8000)")
}
