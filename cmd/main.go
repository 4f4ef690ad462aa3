package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"reflect"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/aukilabs/monumentfinder/config"
	"github.com/aukilabs/monumentfinder/featureflag"
	mfhttp "github.com/aukilabs/monumentfinder/http"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/registry"
	mfwebsocket "github.com/aukilabs/monumentfinder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The MonumentFinder version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "monumentfinder_info",
		Help:        "MonumentFinder information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(options{})

type options struct {
	Addr               string        `cli:""        env:"MONUMENTFINDER_ADDR"                 help:"Listening address for queries and tracking connections."`
	AdminAddr          string        `cli:""        env:"MONUMENTFINDER_ADMIN_ADDR"           help:"Admin listening address."`
	PublicEndpoint     string        `cli:""        env:"MONUMENTFINDER_PUBLIC_ENDPOINT"      help:"The public endpoint where this server is reachable."`
	ConfigFile         string        `cli:""        env:"MONUMENTFINDER_CONFIG_FILE"          help:"The region configuration file (.json, .yaml or .yml). Created when missing."`
	WorldFile          string        `cli:""        env:"MONUMENTFINDER_WORLD_FILE"           help:"The world dump file (.json, .yaml or .yml)."`
	SearchRadius       float64       `cli:""        env:"MONUMENTFINDER_SEARCH_RADIUS"        help:"The radius within which prevent building volumes are looked for."`
	AdminToken         string        `cli:""        env:"MONUMENTFINDER_ADMIN_TOKEN"          help:"The bearer token required by admin endpoints. No check when empty."`
	LogLevel           string        `cli:""        env:"MONUMENTFINDER_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"MONUMENTFINDER_LOG_INDENT"           help:"Indent logs."`
	HeartbeatInterval  time.Duration `cli:",hidden" env:"MONUMENTFINDER_HEARTBEAT_INTERVAL"   help:"Tracking client heartbeat message interval."`
	ClientIdleTimeout  time.Duration `cli:",hidden" env:"MONUMENTFINDER_CLIENT_IDLE_TIMEOUT"  help:"Time until an idle tracking client will be disconnected"`
	LogSummaryInterval time.Duration `cli:",hidden" env:"MONUMENTFINDER_LOG_SUMMARY_INTERVAL" help:"The duration between each log summary by connection."`
	Events             eventsConfig  `cli:",hidden" env:"-"                                   help:"Event pusher configuration."`
	FeatureFlags       []string      `cli:",hidden" env:"MONUMENTFINDER_FEATURE_FLAGS"        help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                                   help:"Show version."`
	Help               bool          `cli:""        env:"-"                                   help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"MONUMENTFINDER_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed. Disabled when empty."`
	FlushInterval time.Duration `cli:",hidden" env:"MONUMENTFINDER_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"MONUMENTFINDER_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"MONUMENTFINDER_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	opts := options{
		Addr:               ":4000",
		AdminAddr:          ":18190",
		PublicEndpoint:     "http://localhost:4000",
		SearchRadius:       50,
		LogLevel:           logs.InfoLevel.String(),
		HeartbeatInterval:  time.Second * 5,
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the MonumentFinder server.").
		Options(&opts)
	cli.Load()

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateOptions(opts); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(opts.LogLevel))
	logs.Encoder = json.Marshal
	if opts.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if opts.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      opts.Events.Endpoint,
			FlushInterval: opts.Events.FlushInterval,
			BatchSize:     opts.Events.BatchSize,
			QueueSize:     opts.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "monumentfinder",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	featureFlags := featureflag.New(opts.FeatureFlags)

	conf, err := loadConfig(opts.ConfigFile)
	if err != nil {
		logs.Fatal(errors.New("loading region configuration failed").Wrap(err))
	}

	world, err := models.LoadWorld(opts.WorldFile)
	if err != nil {
		logs.Fatal(errors.New("loading world failed").Wrap(err))
	}

	var ready atomic.Bool
	readinessCheck := ready.Load

	reg := registry.Build(world, conf, registry.Options{
		SearchRadius: opts.SearchRadius,
		FeatureFlags: featureFlags,
	})
	ready.Store(true)

	monuments := mfhttp.MonumentHandler{
		Registry:   reg,
		Config:     conf,
		ConfigPath: opts.ConfigFile,
	}

	var service http.ServeMux
	service.Handle("/health", mfhttp.HandleWithCORS(http.HandlerFunc(mfhttp.HandleHealthCheck)))
	service.Handle("/version", mfhttp.HandleWithCORS(http.HandlerFunc(mfhttp.HandleVersion(version))))
	service.Handle("/ready", mfhttp.HandleWithCORS(http.HandlerFunc(mfhttp.HandleReadyCheck(readinessCheck))))

	var queries http.ServeMux
	monuments.RegisterRoutes(&queries)
	service.Handle("/monuments", mfhttp.HandleWithCORS(&queries))
	service.Handle("/monuments/", mfhttp.HandleWithCORS(&queries))

	featureFlags.IfNotSet(featureflag.FlagDisablePositionTracking, func() {
		sessions := models.SessionStore{}

		service.Handle("/tracking", websocket.Server{
			Handler: func(conn *websocket.Conn) {
				defer conn.Close()

				var h mfwebsocket.Handler = &mfwebsocket.TrackingHandler{
					Registry:                reg,
					Sessions:                &sessions,
					ClientHeartbeatInterval: opts.HeartbeatInterval,
					ClientIdleTimeout:       opts.ClientIdleTimeout,
				}
				h = mfwebsocket.HandlerWithLogs(h, opts.LogSummaryInterval)
				h = mfwebsocket.HandlerWithMetrics(h, opts.PublicEndpoint)
				defer h.Close()

				mfwebsocket.Handle(ctx, conn, h)
			},
		})
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", mfhttp.HandleHealthCheck)
	admin.HandleFunc("/ready", mfhttp.HandleReadyCheck(readinessCheck))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	monuments.RegisterAdminRoutes(&admin, opts.AdminToken)

	logs.WithTag("version", version).
		WithTag("log_level", opts.LogLevel).
		WithTag("endpoint", opts.PublicEndpoint).
		WithTag("registry_id", reg.ID).
		WithTag("regions", reg.Len()).
		WithTag("feature_flags", opts.FeatureFlags).
		Info("starting monumentfinder server")

	mfhttp.ListenAndServe(ctx,
		&http.Server{Addr: opts.Addr, Handler: metrics.HTTPHandler(&service,
			mfhttp.MetricsPathFormatter)},
		&http.Server{Addr: opts.AdminAddr, Handler: &admin},
	)
}

// loadConfig loads the region configuration. A missing file is created with
// the default configuration and a migrated one is written back.
func loadConfig(filename string) (*config.Configuration, error) {
	if filename == "" {
		return config.New(), nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		conf := config.New()
		if err := conf.Save(filename); err != nil {
			return nil, err
		}

		logs.WithTag("filename", filename).Info("default region configuration created")
		return conf, nil
	}

	conf, err := config.Load(filename)
	if err != nil {
		return nil, err
	}

	if conf.Migrated() {
		if err := conf.Save(filename); err != nil {
			return nil, err
		}
		logs.WithTag("filename", filename).Info("legacy bounds overrides migrated")
	}
	return conf, nil
}

func validateOptions(opts options) error {
	if _, err := url.ParseRequestURI(opts.PublicEndpoint); err != nil {
		return errors.New("invalid public endpoint").Wrap(err)
	}

	if opts.WorldFile == "" {
		return errors.New("a world file is required")
	}

	if opts.SearchRadius < 0 {
		return errors.New("search radius can't be negative").
			WithTag("search_radius", opts.SearchRadius)
	}

	return nil
}
