package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trainload/testserver"
)

func newTestServerCmd() *cobra.Command {
	var (
		addr     string
		token    string
		failRate int
	)
	cmd := &cobra.Command{
		Use:   "testserver",
		Short: "Serve a local stand-in for the training service",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := testserver.NewServer(testserver.Options{Token: token, FailRate: failRate})
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "trainload Test Server")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintf(out, "Listening on http://%s\n\n", addr)
			fmt.Fprintln(out, "Endpoints:")
			fmt.Fprintln(out, "  GET  /health                         - Health check")
			fmt.Fprintln(out, "  POST /api/v1/post/create             - Multipart post create (bearer auth)")
			fmt.Fprintln(out, "  POST /api/v1/training-registration   - Register for a training")
			fmt.Fprintln(out, "  GET  /api/v1/training/list-for-user  - Paginated training list")
			fmt.Fprintln(out)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{Addr: addr, Handler: server.Handler(), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			fmt.Fprintln(out, "\nShutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":3001", "address to listen on")
	f.StringVar(&token, "token", "", "bearer token required by post create (empty = any bearer)")
	f.IntVar(&failRate, "fail-rate", 0, "percentage of API requests answered with 500 (0-100)")
	return cmd
}
