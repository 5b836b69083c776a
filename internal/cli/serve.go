package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/deukgeun/deukgeun/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Skip rest windows between sets")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deukgeun API server",
	Long:  `Start the JSON API server at localhost:8420.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		d.Config.API.Host = serveHost
	}
	if servePort > 0 {
		d.Config.API.Port = servePort
	}
	if serveDev {
		d.Config.Battle.DevMode = true
		d.Tracker.SetDevMode(true)
	}

	return d.Serve(context.Background())
}
