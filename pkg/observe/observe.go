// Package observe records metrics, traces and logs around varint
// stream reads and writes.
//
// Metrics collected:
//   - <namespace>_values_total: Counter of values by op, kind and result
//   - <namespace>_bytes_total: Counter of encoded bytes by op
//
// Example:
//
//	o := observe.New(observe.WithNamespace("ingest"))
//	v, err := observe.Read[uint32](ctx, o, conn)
package observe

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/varint/pkg/varint"
)

// Results reported in the result label.
const (
	ResultOK        = "ok"
	ResultOverflow  = "overflow"
	ResultTruncated = "truncated"
	ResultEOF       = "eof"
	ResultCanceled  = "canceled"
	ResultInvalid   = "invalid"
	ResultIO        = "io"
)

// Config configures an Observer.
type Config struct {
	// Namespace is the metrics namespace (default: "varint").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the name of the tracer (default: "varint").
	TracerName string

	// Logger receives one debug record per value. Default: slog.Default().
	Logger *slog.Logger
}

// Option configures an Observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "varint",
		Registry:   prometheus.DefaultRegisterer,
		TracerName: "varint",
		Logger:     slog.Default(),
	}
}

// Observer holds the instruments shared by instrumented reads and writes.
type Observer struct {
	values *prometheus.CounterVec
	bytes  *prometheus.CounterVec
	tracer trace.Tracer
	logger *slog.Logger
}

// New creates an Observer and registers its metrics.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		values: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "values_total",
			Help:        "Total number of varint values read or written",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "kind", "result"}),

		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_total",
			Help:        "Total number of encoded bytes read or written",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		tracer: otel.Tracer(config.TracerName),
		logger: config.Logger,
	}
}

// Result classifies err for the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, varint.ErrOverflow):
		return ResultOverflow
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ResultTruncated
	case errors.Is(err, io.EOF):
		return ResultEOF
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	case errors.Is(err, strconv.ErrRange), errors.Is(err, strconv.ErrSyntax):
		return ResultInvalid
	default:
		return ResultIO
	}
}

// Record counts one value of n encoded bytes. op is "read" for values
// decoded from a source and "write" for values encoded to a sink.
func (o *Observer) Record(op string, kind varint.Kind, n int, err error) {
	result := Result(err)
	o.values.WithLabelValues(op, kind.String(), result).Inc()
	if n > 0 {
		o.bytes.WithLabelValues(op).Add(float64(n))
	}
}

func (o *Observer) start(ctx context.Context, name string, kind varint.Kind) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("varint.kind", kind.String())),
	)
}

func (o *Observer) finish(ctx context.Context, span trace.Span, op string, kind varint.Kind, n int, err error) {
	o.Record(op, kind, n, err)
	span.SetAttributes(attribute.Int("varint.bytes", n))
	if err != nil && !errors.Is(err, io.EOF) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.DebugContext(ctx, "varint "+op+" failed", "kind", kind, "result", Result(err), "error", err)
	}
	span.End()
}

// countingReader counts the bytes handed to the decoder.
type countingReader struct {
	r varint.ContextByteReader
	n int
}

func (c *countingReader) ReadByteContext(ctx context.Context) (byte, error) {
	b, err := c.r.ReadByteContext(ctx)
	if err == nil {
		c.n++
	}
	return b, err
}

// Read is varint.ReadContext with a span, metrics and logging.
func Read[T varint.Integer](ctx context.Context, o *Observer, r varint.ContextByteReader) (T, error) {
	kind := varint.KindOf[T]()
	ctx, span := o.start(ctx, "varint.read", kind)
	cr := &countingReader{r: r}
	v, err := varint.ReadContext[T](ctx, cr)
	o.finish(ctx, span, "read", kind, cr.n, err)
	return v, err
}

// Write is varint.WriteContext with a span, metrics and logging.
func Write[T varint.Integer](ctx context.Context, o *Observer, w varint.ContextWriter, v T) (int, error) {
	kind := varint.KindOf[T]()
	ctx, span := o.start(ctx, "varint.write", kind)
	n, err := varint.WriteContext(ctx, w, v)
	o.finish(ctx, span, "write", kind, n, err)
	return n, err
}

// ReadAppend reads one value of a kind known only at run time and
// appends its canonical encoding to dst.
func (o *Observer) ReadAppend(ctx context.Context, kind varint.Kind, r varint.ContextByteReader, dst []byte) ([]byte, error) {
	ctx, span := o.start(ctx, "varint.read", kind)
	cr := &countingReader{r: r}
	out, err := kind.ReadAppendContext(ctx, cr, dst)
	o.finish(ctx, span, "read", kind, cr.n, err)
	return out, err
}

// WriteEncoded writes one already encoded value of kind to w.
func (o *Observer) WriteEncoded(ctx context.Context, kind varint.Kind, w varint.ContextWriter, p []byte) (int, error) {
	ctx, span := o.start(ctx, "varint.write", kind)
	n, err := w.WriteContext(ctx, p)
	o.finish(ctx, span, "write", kind, n, err)
	return n, err
}
