package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/go-petr/pet-ledger/internal/domain"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer

	o := NewLogObserver(zerolog.New(&buf))
	o.OnTransactionError(context.Background(), domain.Transaction{
		ID:     12,
		Type:   domain.TypeWithdrawal,
		Amount: decimal.RequireFromString("9.99"),
	}, errors.New("db down"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	require.Equal(t, "error", line["level"])
	require.Equal(t, "db down", line["error"])
	require.Equal(t, float64(12), line["transaction_id"])
	require.Equal(t, "9.99", line["amount"])
	require.Equal(t, "alerting", line["component"])
}

func TestMetricsObserver(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	o, err := NewMetricsObserver(provider)
	require.NoError(t, err)

	ctx := context.Background()
	o.OnTransactionError(ctx, domain.Transaction{Type: domain.TypeDeposit}, errors.New("x"))
	o.OnTransactionError(ctx, domain.Transaction{Type: domain.TypeDeposit}, errors.New("y"))
	o.OnTransactionError(ctx, domain.Transaction{Type: domain.TypeTransferOwn}, errors.New("z"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	require.Equal(t, "ledger.transactions.internal_errors", m.Name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] data, got %T", m.Data)

	got := map[string]int64{}

	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("type"))
		got[v.AsString()] = dp.Value
	}

	require.Equal(t, map[string]int64{"DEPOSIT": 2, "TRANSFER_OWN": 1}, got)
}

func TestNewMetricsObserverGlobalProvider(t *testing.T) {
	o, err := NewMetricsObserver(nil)
	require.NoError(t, err)
	require.NotNil(t, o)
}
