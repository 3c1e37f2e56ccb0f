package strategies

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/broker"
	"github.com/rustyeddy/signaltrader/market"
	"github.com/rustyeddy/signaltrader/predict"
	"github.com/rustyeddy/signaltrader/signals"
)

// ErrPredictionUnavailable matches every *PredictionError. A caller seeing
// it knows the decision is indeterminate, not negative.
var ErrPredictionUnavailable = errors.New("prediction unavailable")

type PredictionError struct {
	Direction market.Direction
	Err       error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction unavailable for %s: %v", e.Direction, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

func (e *PredictionError) Is(target error) bool {
	return target == ErrPredictionUnavailable
}

// PredictMode trades only when the prediction service answers "up".
type PredictMode struct {
	Predictor predict.Predictor
	log       *zap.Logger
}

func (m *PredictMode) Name() string { return string(Trade) }

func (m *PredictMode) ShouldTrade(ctx context.Context, rec signals.Record, dir market.Direction) (bool, error) {
	verdict, err := m.Predictor.Predict(ctx, predict.Request{Features: rec.Features, Direction: dir})
	if err != nil {
		return false, &PredictionError{Direction: dir, Err: err}
	}

	if m.log != nil {
		m.log.Debug("prediction", zap.String("direction", dir.String()), zap.String("verdict", string(verdict)))
	}
	return verdict == predict.VerdictUp, nil
}

func (m *PredictMode) OnPositionClosed(context.Context, signals.Record, broker.Position) error {
	return nil
}
