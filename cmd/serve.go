package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/skillmap/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON/HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		if e.cfg.Log.Mode == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}

		router := httpapi.NewRouter(httpapi.Deps{
			Store:       e.store,
			Assessments: e.assessments,
			Proficiency: e.proficiency,
			Gaps:        e.gaps,
			Paths:       e.paths,
			Ontology:    e.ontology,
			Log:         e.log,
			CORSOrigins: e.cfg.Server.CORSOrigins,
		})
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		printStartUpBanner(addr)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			e.log.Info("http server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		e.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func printStartUpBanner(addr string) {
	banner := figure.NewFigure("SKILLMAP", "", true)
	banner.Print()

	fmt.Println("======================================================")
	fmt.Printf("skillmap API (%s) on %s\n\n", version, addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
