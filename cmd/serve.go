package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"yttitle/internal/apihandlers"
)

var (
	serveAddr string // Listen address
	servePort string // Listen port
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run yttitle as an HTTP API server",
	Long: `Starts an HTTP server exposing keyword exploration and title generation
via a JSON API. Every request names its own keyword and category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config

		if !log.IsLevelEnabled(log.DebugLevel) {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.Default() // Includes logger and recovery middleware

		apiHandler := apihandlers.NewAPIHandler(appInstance.Title, appInstance.APIKeyFor, cfg.Search.DefaultLimit)
		apihandlers.RegisterRoutes(router, apiHandler)

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		listenAddr := fmt.Sprintf("%s:%s", addr, port)
		log.Infof("Starting yttitle API server on http://%s", listenAddr)

		// router.Run blocks unless an error occurs
		if err := router.Run(listenAddr); err != nil {
			log.Errorf("Failed to run API server: %v", err)
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost", "Address to listen on (default server.addr)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on (default server.port)")
}
