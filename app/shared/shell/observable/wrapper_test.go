package observable_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell"
	"github.com/AntonStoeckl/library-circulation-go/app/shared/shell/observable"
	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/testutil/observability/testdoubles"
)

type mockCommand struct{ ID int }

func (mockCommand) CommandType() string { return "TestCommand" }

type mockQuery struct{}

func (mockQuery) QueryType() string { return "TestQuery" }

type mockCommandHandler struct {
	mu     sync.Mutex
	result shell.HandlerResult
	err    error
	calls  []mockCommand
}

func (h *mockCommandHandler) Handle(_ context.Context, command mockCommand) (shell.HandlerResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls = append(h.calls, command)

	return h.result, h.err
}

type mockQueryHandler struct {
	result []string
	err    error
}

func (h mockQueryHandler) Handle(_ context.Context, _ mockQuery) ([]string, error) {
	return h.result, h.err
}

func newCommandWrapper(
	t *testing.T,
	handler *mockCommandHandler,
) (*observable.CommandWrapper[mockCommand, shell.HandlerResult], *testdoubles.MetricsCollectorSpy, *testdoubles.TracingCollectorSpy, *testdoubles.LoggerSpy) {

	t.Helper()

	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
	tracingCollector := testdoubles.NewTracingCollectorSpy(true)
	logger := testdoubles.NewLoggerSpy(true)

	wrapper, err := observable.NewCommandWrapper[mockCommand, shell.HandlerResult](
		handler,
		observable.WithCommandMetrics[mockCommand, shell.HandlerResult](metricsCollector),
		observable.WithCommandTracing[mockCommand, shell.HandlerResult](tracingCollector),
		observable.WithCommandContextualLogging[mockCommand, shell.HandlerResult](logger),
	)
	require.NoError(t, err)

	return wrapper, metricsCollector, tracingCollector, logger
}

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	expectedResult := shell.HandlerResult{RetryAttempts: 1, LastErrorType: "none"}
	handler := &mockCommandHandler{result: expectedResult}
	wrapper, metricsCollector, tracingCollector, logger := newCommandWrapper(t, handler)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{ID: 7})

	// assert
	require.NoError(t, err)
	assert.Equal(t, expectedResult, result)
	assert.Equal(t, []mockCommand{{ID: 7}}, handler.calls)

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.CommandHandlerDurationMetric).
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.False(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).Assert())

	assert.True(t, tracingCollector.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusSuccess))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_WithRetries_RecordsMetrics(t *testing.T) {
	// arrange
	handler := &mockCommandHandler{result: shell.HandlerResult{
		RetryAttempts:   3,
		TotalRetryDelay: 15 * time.Millisecond,
		LastErrorType:   "none",
	}}
	wrapper, metricsCollector, _, _ := newCommandWrapper(t, handler)

	// act
	_, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel(shell.LabelAttemptNumber, "2").
		Assert())
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		Assert())
}

func Test_CommandWrapper_Handle_BusinessRuleViolation_IsRejected(t *testing.T) {
	// arrange
	businessErr := fmt.Errorf("%w: book 42", circulation.ErrInsufficientCopies)
	handler := &mockCommandHandler{result: shell.HandlerResult{RetryAttempts: 1}, err: businessErr}
	wrapper, metricsCollector, tracingCollector, logger := newCommandWrapper(t, handler)

	// act
	_, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.Equal(t, businessErr, err)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerRejectedMetric).Assert())
	assert.True(t, tracingCollector.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusRejected))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandRejected))
	assert.False(t, logger.HasErrorLog(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Handle_ErrorStatuses(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status string
		metric string
	}{
		{name: "canceled", err: context.Canceled, status: shell.StatusCanceled, metric: shell.CommandHandlerCanceledMetric},
		{name: "timeout", err: context.DeadlineExceeded, status: shell.StatusTimeout, metric: shell.CommandHandlerTimeoutMetric},
		{
			name:   "conflict",
			err:    circulation.ErrConcurrencyConflict,
			status: shell.StatusConcurrencyConflict,
			metric: shell.CommandHandlerConcurrencyConflictMetric,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			handler := &mockCommandHandler{err: tc.err}
			wrapper, metricsCollector, _, logger := newCommandWrapper(t, handler)

			// act
			_, err := wrapper.Handle(context.Background(), mockCommand{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metricsCollector.HasCounterRecordForMetric(tc.metric).WithStatus(tc.status).Assert())
			assert.True(t, logger.HasErrorLog(shell.LogMsgCommandFailed))
		})
	}
}

func Test_CommandWrapper_Handle_RetriesExhausted(t *testing.T) {
	// arrange
	handler := &mockCommandHandler{
		result: shell.HandlerResult{RetryAttempts: 6, LastErrorType: "concurrency_conflict", RetriesExhausted: true},
		err:    circulation.ErrConcurrencyConflict,
	}
	wrapper, metricsCollector, _, _ := newCommandWrapper(t, handler)

	// act
	_, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel(shell.LabelFinalErrorType, "concurrency_conflict").
		Assert())
}

func Test_CommandWrapper_Handle_WithoutObservability(t *testing.T) {
	// arrange
	handler := &mockCommandHandler{result: shell.HandlerResult{RetryAttempts: 1}}
	wrapper, err := observable.NewCommandWrapper[mockCommand, shell.HandlerResult](handler)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockCommand{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, result.RetryAttempts)
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
	logger := testdoubles.NewLoggerSpy(true)
	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		mockQueryHandler{result: []string{"a"}},
		observable.WithQueryMetrics[mockQuery, []string](metricsCollector),
		observable.WithQueryLogging[mockQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockQuery{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, logger.HasInfoLog(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Error(t *testing.T) {
	// arrange
	queryErr := errors.New("database down")
	metricsCollector := testdoubles.NewMetricsCollectorSpy(true)
	tracingCollector := testdoubles.NewTracingCollectorSpy(true)
	logger := testdoubles.NewLoggerSpy(true)
	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		mockQueryHandler{err: queryErr},
		observable.WithQueryMetrics[mockQuery, []string](metricsCollector),
		observable.WithQueryTracing[mockQuery, []string](tracingCollector),
		observable.WithQueryContextualLogging[mockQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.Equal(t, queryErr, err)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).WithStatus(shell.StatusError).Assert())
	assert.True(t, tracingCollector.HasFinishedSpan(shell.SpanNameQueryHandle, shell.StatusError))
	assert.True(t, logger.HasErrorLog(shell.LogMsgQueryFailed))
}
