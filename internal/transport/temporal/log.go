package temporal

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// logAdapter routes SDK logs through zap.
type logAdapter struct {
	s *zap.SugaredLogger
}

var _ log.Logger = (*logAdapter)(nil)

func newLogAdapter(l *zap.Logger) *logAdapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &logAdapter{s: l.Named("temporal").Sugar()}
}

func (a *logAdapter) Debug(msg string, keyvals ...any) { a.s.Debugw(msg, keyvals...) }
func (a *logAdapter) Info(msg string, keyvals ...any)  { a.s.Infow(msg, keyvals...) }
func (a *logAdapter) Warn(msg string, keyvals ...any)  { a.s.Warnw(msg, keyvals...) }
func (a *logAdapter) Error(msg string, keyvals ...any) { a.s.Errorw(msg, keyvals...) }
