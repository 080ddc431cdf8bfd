package observe

import "errors"

// Configuration errors.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates an unknown tracing exporter name.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter indicates an unknown metrics exporter name.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")

	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("observe: invalid log format")
)

// Runtime errors.
var (
	// ErrNilObserver indicates a nil Observer was provided.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingComponentName indicates ComponentMeta.Name is empty.
	ErrMissingComponentName = errors.New("observe: component name is required")
)

// Validation constants.
const (
	// MinSamplePct is the minimum valid sampling percentage.
	MinSamplePct = 0.0
	// MaxSamplePct is the maximum valid sampling percentage.
	MaxSamplePct = 1.0
)

// ValidTracingExporters lists valid tracing exporter names.
var ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}

// ValidMetricsExporters lists valid metrics exporter names.
var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

// ValidLogLevels lists valid log level names.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// ValidLogFormats lists valid log format names. Empty selects json.
var ValidLogFormats = []string{"json", "zap", ""}

// RedactedFields lists field keys that are automatically redacted in logs.
// Props and tokens routinely carry user data or signed credentials.
var RedactedFields = []string{
	"input",
	"inputs",
	"props",
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
	"authorization",
}

var redactedSet = func() map[string]bool {
	set := make(map[string]bool, len(RedactedFields))
	for _, k := range RedactedFields {
		set[k] = true
	}
	return set
}()

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	return redactedSet[key]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Halter is implemented by errors that end a render with a terminal
// response instead of failing it. component.HaltError implements it.
type Halter interface {
	Halted() bool
}

// IsHalt reports whether err, or any error it wraps, is a halt.
func IsHalt(err error) bool {
	var h Halter
	return errors.As(err, &h) && h.Halted()
}
