package binding

import (
	"errors"
	"fmt"

	"github.com/anoideaopen/latebinding/core/config"
	"github.com/anoideaopen/latebinding/core/dispatch"
	rbackend "github.com/anoideaopen/latebinding/core/dispatch/reflect"
	"github.com/anoideaopen/latebinding/core/logger"
	"github.com/anoideaopen/latebinding/core/telemetry"
	"github.com/sirupsen/logrus"
)

type options struct {
	logger        *logrus.Logger
	tracing       *telemetry.TracingHandler
	fieldFallback bool
	indexerName   string
	registry      *rbackend.Registry
}

// Option configures bindings and factories.
type Option func(*options) error

// WithLogger sets the logger of the binding. logger.Logger() is used by default.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		o.logger = l
		return nil
	}
}

// WithTracingHandler sets the handler starting a span per operation. The
// global tracer provider is used by default.
func WithTracingHandler(th *telemetry.TracingHandler) Option {
	return func(o *options) error {
		if th == nil {
			return errors.New("tracing handler is nil")
		}
		o.tracing = th
		return nil
	}
}

// WithFieldFallback retries a property access as a field access when the
// backend reports that no such property exists. Other failures are never
// retried.
func WithFieldFallback() Option {
	return func(o *options) error {
		o.fieldFallback = true
		return nil
	}
}

// WithIndexerName sets the member name used by Index. It defaults to
// dispatch.IndexerName.
func WithIndexerName(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("%w: indexer", ErrEmptyName)
		}
		o.indexerName = name
		return nil
	}
}

// WithRegistry sets the registry used to construct types by name. It
// defaults to the reflect backend's DefaultRegistry.
func WithRegistry(r *rbackend.Registry) Option {
	return func(o *options) error {
		if r == nil {
			return errors.New("registry is nil")
		}
		o.registry = r
		return nil
	}
}

// WithConfig applies the binding settings of a loaded configuration: field
// fallback and the indexer name. The trace provider is process wide and is
// installed once with telemetry.InstallFromConfig.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return config.ErrCfgBytesEmpty
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.fieldFallback = cfg.FieldFallback
		o.indexerName = cfg.IndexerName
		return nil
	}
}

func newOptions(opts ...Option) (options, error) {
	o := options{
		indexerName: dispatch.IndexerName,
		registry:    rbackend.DefaultRegistry,
	}

	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}

	if o.logger == nil {
		o.logger = logger.Logger()
	}
	if o.tracing == nil {
		o.tracing = telemetry.NewTracingHandler(nil, nil)
	}

	return o, nil
}
