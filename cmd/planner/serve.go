package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"postplanner/internal/di"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := di.InitializeApplication(ctx)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer cleanup()
	log := app.Log

	if err := app.Approvals.EnsureDefaultWorkflow(ctx); err != nil {
		log.Warn("default approval workflow not ensured", zap.Error(err))
	}

	srv := app.Config.Server
	// no WriteTimeout: the event stream is long lived
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(srv.Host, srv.HTTPPort),
		Handler:           app.Router,
		ReadTimeout:       time.Duration(srv.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(srv.ReadTimeout) * time.Second,
	}

	grpcListener, err := net.Listen("tcp", net.JoinHostPort(srv.Host, srv.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc on %s: %w", srv.GRPCPort, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc server listening", zap.String("addr", grpcListener.Addr().String()))
		if err := app.GRPC.Serve(grpcListener); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			app.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			app.GRPC.Stop()
		}

		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
