package tracing

import (
	"go.uber.org/zap"

	"github.com/sarchlab/keepaway/sim"
)

// InspectionLogger is a hook that writes every inspection to a logger at
// debug level.
type InspectionLogger struct {
	logger *zap.Logger
}

// NewInspectionLogger returns a new InspectionLogger which will write into
// the logger.
func NewInspectionLogger(logger *zap.Logger) *InspectionLogger {
	return &InspectionLogger{logger: logger}
}

// Func writes the inspection into the logger.
func (h *InspectionLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosInspection {
		return
	}

	insp, ok := ctx.Detail.(sim.Inspection)
	if !ok {
		return
	}

	h.logger.Debug("inspection",
		zap.Int("round", insp.Round),
		zap.Int("from", int(insp.From)),
		zap.Int("to", int(insp.To)),
		zap.Uint64("before", insp.Before),
		zap.Uint64("after", insp.After))
}
