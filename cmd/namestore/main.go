package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/openHPI/namestore/internal/api"
	"github.com/openHPI/namestore/internal/config"
	"github.com/openHPI/namestore/pkg/logging"
	"github.com/openHPI/namestore/pkg/monitoring"
	"github.com/openHPI/namestore/pkg/namestore"
	"golang.org/x/sys/unix"
)

var (
	gracefulShutdownWait = 15 * time.Second
	log                  = logging.GetLogger("main")
)

// revision returns the VCS revision the binary was built from, suffixed with "-modified" for dirty builds.
func revision() string {
	settings := map[string]string{"vcs.revision": "unknown"}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			settings[setting.Key] = setting.Value
		}
	}

	rev := settings["vcs.revision"]
	if settings["vcs.modified"] == "true" {
		rev += "-modified"
	}
	return rev
}

func initSentry(options *sentry.ClientOptions) {
	if options.Release == "" {
		options.Release = revision()
	}
	if err := sentry.Init(*options); err != nil {
		log.WithError(err).Error("Could not initialize Sentry")
	}
}

// initStore creates the monitored name store and seeds it with the configured initial names.
func initStore(ctx context.Context) *namestore.NameStore {
	interval := time.Duration(config.Config.Store.MonitoringInterval) * time.Second
	store := namestore.NewMonitoredNameStore(monitoring.MeasurementNames, nil, interval, ctx)
	if len(config.Config.Store.InitialNames) > 0 {
		store.SetNames(config.Config.Store.InitialNames)
		log.WithField("count", store.Size()).Info("Stored initial names")
	}
	return store
}

// initServer creates a server for the API of the passed store.
func initServer(store namestore.Store) *http.Server {
	const timeout = 15 * time.Second
	const idleTimeout = 60 * time.Second
	return &http.Server{
		Addr:              config.Config.Server.URL().Host,
		Handler:           sentryhttp.New(sentryhttp.Options{}).Handle(api.NewRouter(store)),
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       idleTimeout,
	}
}

// listen returns the sockets passed by systemd or a new TCP listener on the configured address.
func listen(address string) ([]net.Listener, error) {
	if config.Config.Server.SystemdSocketActivation {
		listeners, err := activation.Listeners()
		if err != nil {
			return nil, fmt.Errorf("systemd socket activation failed: %w", err)
		}
		if len(listeners) == 0 {
			return nil, errors.New("systemd passed no sockets")
		}
		return listeners, nil
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", address, err)
	}
	return []net.Listener{listener}, nil
}

// serve blocks until the server stopped serving all listeners.
func serve(server *http.Server, listeners []net.Listener) {
	tlsConfig := config.Config.Server.TLS
	if tlsConfig.Active {
		server.TLSConfig = config.TLSConfig
	}

	var wg sync.WaitGroup
	for _, listener := range listeners {
		wg.Add(1)
		go func(listener net.Listener) {
			defer wg.Done()
			entry := log.WithField("address", listener.Addr())
			entry.WithField("tls", tlsConfig.Active).Info("Serving names")

			var err error
			if tlsConfig.Active {
				err = server.ServeTLS(listener, tlsConfig.CertFile, tlsConfig.KeyFile)
			} else {
				err = server.Serve(listener)
			}
			if errors.Is(err, http.ErrServerClosed) {
				entry.Info("Server closed")
			} else {
				entry.WithError(err).Error("Serving failed")
			}
		}(listener)
	}
	wg.Wait()
}

func runServer(server *http.Server, store namestore.Store, cancel context.CancelFunc) {
	defer cancel()
	defer func() {
		if err := recover(); err != nil {
			sentry.CurrentHub().Recover(err)
			sentry.Flush(logging.GracefulSentryShutdown)
		}
	}()

	listeners, err := listen(server.Addr)
	if err != nil {
		log.WithError(err).Fatal("Failed listening to any socket")
		return
	}
	notifySystemd(store)
	serve(server, listeners)
}

// notifySystemd reports readiness and starts the watchdog if systemd expects one.
func notifySystemd(store namestore.Store) {
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.WithError(err).Warn("Failed notifying readiness to systemd")
	} else if sent {
		log.Debug("Notified readiness to systemd")
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		log.WithError(err).Debug("Systemd watchdog disabled")
		return
	}
	go watchStore(context.Background(), store, interval/2, func() {
		if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
			log.WithError(err).Warn("Failed notifying systemd watchdog")
		}
	})
}

// watchStore calls alive in every interval in which the store answered a read.
// A store that stays locked therefore lets the systemd watchdog expire.
func watchStore(ctx context.Context, store namestore.Store, interval time.Duration, alive func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			size := store.Size()
			log.WithField("count", size).Trace("Name store alive")
			alive()
		}
	}
}

// shutdownOnOSSignal blocks until ctx is done or the process receives SIGINT, SIGTERM or SIGABRT.
// A signal shuts the server down, waiting up to gracefulShutdownWait for open requests.
func shutdownOnOSSignal(server *http.Server, ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, unix.SIGINT, unix.SIGTERM, unix.SIGABRT)
	defer signal.Stop(signals)

	select {
	case <-ctx.Done():
		log.Error("Server stopped unexpectedly")
	case sig := <-signals:
		log.WithField("signal", sig).Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gracefulShutdownWait)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Graceful shutdown failed")
		}
	}
}

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Warn("Could not initialize configuration")
	}
	logging.InitializeLogging(config.Config.Logger.Level, config.Config.Logger.Formatter)
	initSentry(&config.Config.Sentry)

	cancelInflux := monitoring.InitializeInfluxDB(&config.Config.InfluxDB)
	defer cancelInflux()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := initStore(ctx)
	server := initServer(store)
	go runServer(server, store, cancel)
	shutdownOnOSSignal(server, ctx)
}
