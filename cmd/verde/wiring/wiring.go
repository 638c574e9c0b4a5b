// Package wiring builds the storage, search, events and responder stack
// shared by the verde commands from resolved configuration.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/verde/cmd/verde/sqlitepath"
	"github.com/papercomputeco/verde/pkg/cliui"
	"github.com/papercomputeco/verde/pkg/config"
	"github.com/papercomputeco/verde/pkg/eventstream"
	"github.com/papercomputeco/verde/pkg/eventstream/kafka"
	"github.com/papercomputeco/verde/pkg/eventstream/nop"
	"github.com/papercomputeco/verde/pkg/logger"
	"github.com/papercomputeco/verde/pkg/metrics"
	"github.com/papercomputeco/verde/pkg/responder"
	"github.com/papercomputeco/verde/pkg/storage"
	"github.com/papercomputeco/verde/pkg/storage/inmemory"
	"github.com/papercomputeco/verde/pkg/storage/postgres"
	"github.com/papercomputeco/verde/pkg/storage/sqlite"
	"github.com/papercomputeco/verde/pkg/websearch"
	"github.com/papercomputeco/verde/pkg/worker"
)

// Settings is the resolved configuration for a Stack.
type Settings struct {
	StorageDriver string
	SQLitePath    string
	PostgresDSN   string

	SearchEndpoint string
	SearchTimeout  time.Duration
	SiteSuffix     string

	RecentLimit int
	Threshold   float64

	EventsProvider string
	EventsBrokers  []string
	EventsTopic    string
}

// SettingsFromViper reads Settings through the viper precedence chain.
func SettingsFromViper(v *viper.Viper) Settings {
	return Settings{
		StorageDriver:  v.GetString("storage.driver"),
		SQLitePath:     v.GetString("storage.sqlite_path"),
		PostgresDSN:    v.GetString("storage.postgres_dsn"),
		SearchEndpoint: v.GetString("search.endpoint"),
		SearchTimeout:  time.Duration(v.GetUint("search.timeout")) * time.Second,
		SiteSuffix:     v.GetString("search.site_suffix"),
		RecentLimit:    v.GetInt("memory.recent_limit"),
		Threshold:      v.GetFloat64("memory.threshold"),
		EventsProvider: v.GetString("events.provider"),
		EventsBrokers:  config.SplitList(v.GetString("events.brokers")),
		EventsTopic:    v.GetString("events.topic"),
	}
}

// Flags holds the targets of the storage and responder flags.
type Flags struct {
	StorageDriver  string
	SQLitePath     string
	PostgresDSN    string
	SearchEndpoint string
	SearchTimeout  uint
	SiteSuffix     string
	EventsProvider string
	EventsBrokers  string
	EventsTopic    string
}

// AddFlags registers the storage and responder flags on cmd.
func AddFlags(cmd *cobra.Command, f *Flags) {
	config.AddStringFlag(cmd, config.StorageFlags, config.FlagStorageDriver, &f.StorageDriver)
	config.AddStringFlag(cmd, config.StorageFlags, config.FlagSQLite, &f.SQLitePath)
	config.AddStringFlag(cmd, config.StorageFlags, config.FlagPostgresDSN, &f.PostgresDSN)
	config.AddStringFlag(cmd, config.ResponderFlags, config.FlagSearchEndpoint, &f.SearchEndpoint)
	config.AddUintFlag(cmd, config.ResponderFlags, config.FlagSearchTimeout, &f.SearchTimeout)
	config.AddStringFlag(cmd, config.ResponderFlags, config.FlagSiteSuffix, &f.SiteSuffix)
	config.AddStringFlag(cmd, config.ResponderFlags, config.FlagEventsProvider, &f.EventsProvider)
	config.AddStringFlag(cmd, config.ResponderFlags, config.FlagEventsBrokers, &f.EventsBrokers)
	config.AddStringFlag(cmd, config.ResponderFlags, config.FlagEventsTopic, &f.EventsTopic)
}

// LoadSettings initializes viper from the --config-dir flag, binds the
// storage and responder flags and returns the resolved Settings.
func LoadSettings(cmd *cobra.Command) (Settings, *viper.Viper, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return Settings{}, nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.StorageFlags, config.StorageFlags.Keys())
	config.BindRegisteredFlags(v, cmd, config.ResponderFlags, config.ResponderFlags.Keys())

	s := SettingsFromViper(v)
	if err := config.ValidateThreshold(s.Threshold); err != nil {
		return Settings{}, nil, fmt.Errorf("invalid memory.threshold: %w", err)
	}

	return s, v, nil
}

// Stack is the assembled set of components answering questions.
type Stack struct {
	Driver    storage.Driver
	Responder *responder.Responder
	Metrics   *metrics.Metrics

	publisher eventstream.Publisher
	pool      *worker.Pool
	logger    *zap.Logger
}

// NewStack opens storage, the event publisher and the responder described by s.
// Callers must Close the returned Stack.
func NewStack(ctx context.Context, s Settings, logger *zap.Logger) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := OpenDriver(ctx, s, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := NewPublisher(s, logger)
	if err != nil {
		_ = driver.Close()
		return nil, err
	}

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		_ = publisher.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	m := metrics.New()

	searcher := websearch.NewClient(websearch.Config{
		Endpoint: s.SearchEndpoint,
		Timeout:  s.SearchTimeout,
		Logger:   logger,
	})

	r, err := responder.New(responder.Config{
		Driver:      driver,
		Searcher:    searcher,
		SiteSuffix:  s.SiteSuffix,
		RecentLimit: s.RecentLimit,
		Threshold:   s.Threshold,
		Pool:        pool,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		pool.Close()
		_ = publisher.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("creating responder: %w", err)
	}

	return &Stack{
		Driver:    driver,
		Responder: r,
		Metrics:   m,
		publisher: publisher,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Close drains pending events, then closes the publisher and the store.
func (s *Stack) Close() error {
	s.pool.Close()
	return errors.Join(s.publisher.Close(), s.Driver.Close())
}

// OpenDriver opens the storage driver named by s.StorageDriver.
func OpenDriver(ctx context.Context, s Settings, logger *zap.Logger) (storage.Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch s.StorageDriver {
	case "", config.StorageDriverSQLite:
		path, err := sqlitepath.ResolveSQLitePath(s.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("resolving sqlite path: %w", err)
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("using sqlite store", zap.String("path", path))
		return driver, nil

	case config.StorageDriverPostgres:
		if s.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires --postgres-dsn")
		}
		driver, err := postgres.NewDriver(ctx, s.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		logger.Debug("using postgres store")
		return driver, nil

	case config.StorageDriverMemory:
		logger.Debug("using in-memory store")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q (available: sqlite, postgres, memory)", s.StorageDriver)
	}
}

// NewPublisher creates the exchange event publisher named by s.EventsProvider.
func NewPublisher(s Settings, logger *zap.Logger) (eventstream.Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch s.EventsProvider {
	case "", config.EventsProviderNone:
		return nop.NewPublisher(), nil

	case config.EventsProviderKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: s.EventsBrokers,
			Topic:   s.EventsTopic,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		logger.Debug("publishing exchange events to kafka",
			zap.Strings("brokers", s.EventsBrokers),
			zap.String("topic", s.EventsTopic),
		)
		return p, nil

	default:
		return nil, fmt.Errorf("unknown events provider: %q (available: none, kafka)", s.EventsProvider)
	}
}

// InteractiveLogger returns the logger for commands that print answers to
// the terminal: debug output on w when debug is set, silence otherwise.
func InteractiveLogger(debug bool, w io.Writer) *zap.Logger {
	if !debug {
		return logger.Nop()
	}
	if cliui.IsTerminal(w) {
		return logger.NewLoggerWithWriters(true, w)
	}
	return logger.NewPlainLogger(true, w)
}

// Resolve answers question, showing a spinner on w while it runs when w is
// a terminal.
func Resolve(ctx context.Context, r *responder.Responder, question string, w io.Writer) (*responder.Resolution, error) {
	if !cliui.IsTerminal(w) {
		return r.Respond(ctx, question)
	}

	var res *responder.Resolution
	err := cliui.Step(w, "Pensando...", func() error {
		var err error
		res, err = r.Respond(ctx, question)
		return err
	})
	return res, err
}
