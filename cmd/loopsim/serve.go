package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/api"
	"github.com/san-kum/loopsim/internal/statistics"
	"github.com/san-kum/loopsim/internal/ui"
)

func serve(cmd *cobra.Command, args []string) error {
	st := openStore()
	if err := st.Init(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rest, err := api.CreateRestService(st, reg, statistics.Default)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	{
		// === REST server
		g.Add(func() error {
			ui.Info("Serving on %s", serveAddr)
			if err := rest.Start(serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}, func(err error) {
			timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer timeoutCancel()
			if err := rest.Shutdown(timeoutCtx); err != nil {
				ui.Warning("Error stopping server: %v", err)
			} else {
				ui.Info("Server stopped.")
			}
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	}

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		ui.Info("Received %s, exiting...", sigErr.Signal)
		return nil
	}
	return err
}
