package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level.
type LoggedSource struct {
	src    Source
	name   string
	logger *zap.Logger
}

// NewLoggedSource creates a Source that draws from src and logs each value.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, name string, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, name: name, logger: logger}
}

// Float64 draws from the wrapped source and logs the result.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("random draw",
		zap.String("source", l.name),
		zap.Float64("value", v),
	)
	return v
}
