// Package alerting provides observers of transactions that failed unexpectedly.
package alerting

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// LogObserver writes an alert line for every internal error.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver returns LogObserver writing to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With().Str("component", "alerting").Logger()}
}

// OnTransactionError logs t and its cause at error level.
func (o *LogObserver) OnTransactionError(_ context.Context, t domain.Transaction, err error) {
	o.logger.Error().
		Err(err).
		Int64("transaction_id", t.ID).
		Str("transaction_type", string(t.Type)).
		Str("amount", t.Amount.String()).
		Int32("source_account_id", t.SourceAccountID).
		Int32("destination_account_id", t.DestinationAccountID).
		Msg("ALERT: transaction ended with internal error")
}

// MetricsObserver counts internal errors per transaction type.
type MetricsObserver struct {
	failures metric.Int64Counter
}

// NewMetricsObserver creates the counter on provider. The global provider is
// used when provider is nil.
func NewMetricsObserver(provider metric.MeterProvider) (*MetricsObserver, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter("pet-ledger.transactions")

	failures, err := meter.Int64Counter(
		"ledger.transactions.internal_errors",
		metric.WithDescription("Number of transactions that ended with INTERNAL_ERROR"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ledger.transactions.internal_errors counter: %w", err)
	}

	return &MetricsObserver{failures: failures}, nil
}

// OnTransactionError increments the counter for the type of t.
func (o *MetricsObserver) OnTransactionError(ctx context.Context, t domain.Transaction, _ error) {
	o.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(t.Type))))
}
