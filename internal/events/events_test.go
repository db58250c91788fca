package events

import (
	"context"
	"errors"
	"testing"

	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToEverySink(t *testing.T) {
	m := metrics.NewTestMetrics()
	bus := NewBus(logger.NewNop(), m)

	failing := &Recorder{Err: errors.New("broker down")}
	ok := &Recorder{}
	bus.Add("rabbitmq", failing)
	bus.Add("websocket", ok)

	err := bus.Publish(context.Background(), New(TypeLoadAssigned, map[string]string{"load_id": "L-5001"}, "D-101"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	assert.Equal(t, []string{TypeLoadAssigned}, failing.Types())
	assert.Equal(t, []string{TypeLoadAssigned}, ok.Types())
	assert.Equal(t, "D-101", ok.Events()[0].DriverID)
	assert.NotEmpty(t, ok.Events()[0].Timestamp)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("rabbitmq", metrics.ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("websocket", metrics.ResultSuccess)))
}

func TestBus_NoSinks(t *testing.T) {
	bus := NewBus(logger.NewNop(), nil)
	assert.NoError(t, bus.Publish(context.Background(), New(TypeTaskUpdated, nil, "")))
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop.Publish(context.Background(), Event{}))
	assert.NoError(t, NopNotifier.NotifyUser(context.Background(), "D-101", "t", "b", nil))
}
