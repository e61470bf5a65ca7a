// Command server runs the numspeak HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/numspeak/config"
	"github.com/remiges-tech/numspeak/history"
	"github.com/remiges-tech/numspeak/internal/webservices/speech"
	"github.com/remiges-tech/numspeak/logger"
	"github.com/remiges-tech/numspeak/metrics"
	"github.com/remiges-tech/numspeak/numwords"
	"github.com/remiges-tech/numspeak/objstore"
	"github.com/remiges-tech/numspeak/router"
	"github.com/remiges-tech/numspeak/service"
	"github.com/remiges-tech/numspeak/wscutils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configSource := flag.String("configSource", "file", "The source of the configuration: file or rigel")
	configFile := flag.String("configFile", "./config.json", "Path to the configuration file")
	etcdEndpoints := flag.String("etcdEndpoints", "localhost:2379", "Comma-separated etcd endpoints for rigel")
	rigelApp := flag.String("rigelApp", "numspeak", "Rigel app name")
	rigelModule := flag.String("rigelModule", "server", "Rigel module name")
	rigelVersion := flag.Int("rigelVersion", 1, "Rigel schema version")
	rigelConfig := flag.String("rigelConfig", "prod", "Rigel config name")
	printSchema := flag.Bool("schema", false, "Print the JSON schema of the configuration and exit")
	flag.Parse()

	if *printSchema {
		schema, err := config.Schema()
		if err != nil {
			log.Fatalf("Error generating schema: %v", err)
		}
		fmt.Println(string(schema))
		return
	}

	var cs config.Config
	switch *configSource {
	case "file":
		f, err := config.NewFile(*configFile)
		if err != nil {
			log.Fatalf("Error opening config file: %v", err)
		}
		cs = f
	case "rigel":
		client, err := config.NewRigelClient(*etcdEndpoints, *rigelApp, *rigelModule, *rigelVersion, *rigelConfig)
		if err != nil {
			log.Fatalf("Error creating rigel client: %v", err)
		}
		cs = &config.Rigel{Client: client}
	default:
		log.Fatalf("Unknown configuration source: %s", *configSource)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cs, os.Stdout)
	if err != nil {
		log.Fatalf("Error starting numspeak: %v", err)
	}
	defer a.close()

	if err := a.run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// app is a configured numspeak server.
type app struct {
	cfg           config.AppConfig
	lh            *logharbour.Logger
	svc           *service.Service
	system        *speech.SystemSetting
	server        *http.Server
	metricsServer *http.Server
	closers       []func()
}

func newApp(ctx context.Context, cs config.Config, w io.Writer) (*app, error) {
	cfg, err := config.LoadAppConfig(cs)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, lh: logger.New(cfg.AppName, cfg.LogLevel, w)}
	if err := a.setup(ctx, cs); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) setup(ctx context.Context, cs config.Config) error {
	cfg := a.cfg
	lh := a.lh.WithModule("server").WithOp("setup")

	if cfg.ErrorTypesFile != "" {
		f, err := os.Open(cfg.ErrorTypesFile)
		if err != nil {
			return fmt.Errorf("open error types: %w", err)
		}
		err = wscutils.LoadErrorTypes(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	m := metrics.NewPrometheusMetrics(nil)
	if err := metrics.RegisterSpeechMetrics(m); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		a.closers = append(a.closers, func() { rdb.Close() })
	}

	var auth *router.AuthMiddleware
	if cfg.AuthEnabled {
		cache := router.NewRedisTokenCache(rdb, time.Duration(cfg.TokenCacheTTLSeconds)*time.Second)
		var err error
		auth, err = router.LoadAuthMiddleware(ctx, cfg.OIDCClientID, cfg.OIDCProviderURL, cache, a.lh)
		if err != nil {
			return err
		}
	}

	r := router.SetupRouter(router.Options{
		Logger:  a.lh,
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Auth:    auth,
	})

	system, _ := numwords.ParseSystem(cfg.DefaultSystem)
	a.system = speech.NewSystemSetting(system)

	s := service.NewService(r).
		WithConfig(cs).
		WithLogHarbour(a.lh).
		WithMetrics(m).
		WithDependency(speech.DepDefaultSystem, a.system)

	store, err := a.historyStore(ctx, rdb)
	if err != nil {
		return err
	}
	if store != nil {
		s.WithDependency(speech.DepHistory, store)

		if cfg.MinioEndpoint != "" {
			client, err := objstore.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
			if err != nil {
				return err
			}
			objects := objstore.NewMinioObjectStore(client)
			if err := objects.EnsureBucket(ctx, cfg.MinioBucket); err != nil {
				return err
			}
			s.WithDependency(speech.DepArchiver, &history.Archiver{Store: store, Objects: objects, Bucket: cfg.MinioBucket})
		}
	}

	if err := speech.Register(s); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	if cfg.MetricsPort > 0 {
		a.metricsServer = m.NewMetricsServer(cfg.MetricsPort)
	} else {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	a.svc = s
	a.server = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lh.Info().LogActivity("numspeak configured", map[string]any{
		"port":           cfg.ServerPort,
		"default_system": cfg.DefaultSystem,
		"history":        cfg.HistoryBackend,
		"export":         cfg.MinioEndpoint != "",
		"auth":           cfg.AuthEnabled,
	})
	return nil
}

func (a *app) historyStore(ctx context.Context, rdb *redis.Client) (history.Store, error) {
	switch a.cfg.HistoryBackend {
	case config.HistoryRedis:
		return history.NewRedisStore(rdb, a.cfg.HistorySize), nil
	case config.HistoryPostgres:
		pg, err := history.OpenPGStore(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		return pg, nil
	}
	return nil, nil
}

// watchDefaultSystem applies changes of default_system in cs until ctx is done.
func (a *app) watchDefaultSystem(ctx context.Context, cs config.Config) {
	lh := a.lh.WithModule("server").WithOp("watch")
	events := make(chan config.Event)
	if err := cs.Watch(ctx, "default_system", events); err != nil {
		lh.Warn().LogActivity("default_system is not watched", map[string]any{"error": err.Error()})
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				system, ok := numwords.ParseSystem(ev.Value)
				if !ok {
					lh.Warn().LogActivity("ignoring unknown default_system", map[string]any{"value": ev.Value})
					continue
				}
				a.system.Set(system)
				lh.Info().LogActivity("default_system changed", map[string]any{"value": system.String()})
			}
		}
	}()
}

// run serves until ctx is cancelled and then shuts the servers down.
func (a *app) run(ctx context.Context) error {
	a.watchDefaultSystem(ctx, a.svc.Config)

	errCh := make(chan error, 2)
	serve := func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}
	go serve(a.server)
	if a.metricsServer != nil {
		go serve(a.metricsServer)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if sErr := a.server.Shutdown(shutdownCtx); sErr != nil && err == nil {
		err = sErr
	}
	if a.metricsServer != nil {
		_ = a.metricsServer.Shutdown(shutdownCtx)
	}
	a.lh.WithModule("server").Info().LogActivity("numspeak stopped", nil)
	return err
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
