package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Brownie44l1/judi-api/internal/model"
)

const namespace = "judi"

// Predictor is the prediction surface being instrumented.
type Predictor interface {
	Predict(ctx context.Context, text string) (*model.PredictionResult, error)
}

// InstrumentedPredictor records counts, latency and failures of the wrapped
// predictor.
type InstrumentedPredictor struct {
	next        Predictor
	predictions *prometheus.CounterVec
	errors      prometheus.Counter
	duration    prometheus.Histogram
}

func NewInstrumentedPredictor(next Predictor, reg prometheus.Registerer) (*InstrumentedPredictor, error) {
	p := &InstrumentedPredictor{
		next: next,
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Completed predictions by classification.",
		}, []string{"classification"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Predictions that failed in tokenization or inference.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in tokenization and inference.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{p.predictions, p.errors, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *InstrumentedPredictor) Predict(ctx context.Context, text string) (*model.PredictionResult, error) {
	start := time.Now()
	result, err := p.next.Predict(ctx, text)
	p.duration.Observe(time.Since(start).Seconds())

	if err != nil {
		p.errors.Inc()
		return nil, err
	}

	p.predictions.WithLabelValues(result.Classification).Inc()
	return result, nil
}
