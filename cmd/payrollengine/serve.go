package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meridian/payroll-engine/api"
	"github.com/meridian/payroll-engine/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the emitted documents to the reporting dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := viper.GetString("out")
		dbPath := viper.GetString("db")
		port := viper.GetInt("port")
		dashboard := viper.GetString("dashboard")
		origins := viper.GetStringSlice("origins")

		var archive *sqlite.Store
		if dbPath != "" {
			var err error
			archive, err = sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer archive.Close()
		}

		handler := api.NewHandler(outDir, archive)
		router := api.NewRouter(handler, api.RouterOptions{
			AllowedOrigins: origins,
			DashboardDir:   dashboard,
		})

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Printf("Serving %s on http://localhost:%d", outDir, port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		log.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().String("dashboard", "", "static dashboard directory served at /")
	serveCmd.Flags().StringSlice("origins", nil, "allowed CORS origins for the dashboard")
	rootCmd.AddCommand(serveCmd)
}
