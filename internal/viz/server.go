package viz

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	// PortSearchRange is how many ports above the requested one are tried.
	PortSearchRange = 100

	browserDelay    = time.Second
	shutdownTimeout = 5 * time.Second
)

// Listen binds the first free port in [port, port+PortSearchRange] on localhost.
func Listen(port int) (net.Listener, error) {
	var lastErr error
	for p := port; p <= port+PortSearchRange && p <= 65535; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", p))
		if err == nil {
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port in %d-%d: %w", port, port+PortSearchRange, lastErr)
}

// NewHandler serves the bundle directory as static files.
func NewHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
}

// Serve serves dir until ctx is cancelled or the process receives SIGINT/SIGTERM.
// When open is set the browser is pointed at the page shortly after the listener is up.
func Serve(ctx context.Context, dir string, port int, open bool) error {
	ln, err := Listen(port)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := fmt.Sprintf("http://%s/", ln.Addr().String())
	fmt.Printf("🌐 Serving %s at %s\n", dir, url)
	fmt.Println("Press Ctrl+C to stop")

	if open {
		timer := time.AfterFunc(browserDelay, func() {
			if err := OpenBrowser(url); err != nil {
				fmt.Fprintf(os.Stderr, "Warn cannot open browser: %v\n", err)
			}
		})
		defer timer.Stop()
	}

	return serveListener(ctx, ln, dir)
}

// serveListener runs the file server on ln and shuts it down gracefully when ctx ends.
func serveListener(ctx context.Context, ln net.Listener, dir string) error {
	server := &http.Server{
		Handler:           NewHandler(dir),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		fmt.Println("👋 Server stopped")
		return nil
	}
}
