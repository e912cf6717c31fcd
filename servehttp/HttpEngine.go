package servehttp

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var ShutdownTimeout = 3 * time.Second

// NewEngine builds the default gin engine. Forwarding headers are honored only from
// trustedProxies, so ClientIP falls back to the peer address for everyone else.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	engine := gin.Default()
	if err := engine.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}
	return engine, nil
}

// StartHTTPServer serves until SIGINT or SIGTERM, then drains in-flight requests.
func StartHTTPServer(engine *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	// kill (no param) sends SIGTERM, kill -2 sends SIGINT, SIGKILL can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(srv, quit)
}

func serve(srv *http.Server, quit <-chan os.Signal) error {
	failed := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return err
	case sig := <-quit:
		logrus.Infof("[QUIT] %v received, the service will exit within %v", sig, ShutdownTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("[QUIT] http server is shutdown gracefully")
	return nil
}
