package circulation_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func Test_ParseDate(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Time
		wantErr  bool
	}{
		{name: "valid_date", value: "20250301", expected: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "leap_day", value: "20240229", expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "no_leap_day", value: "20250229", wantErr: true},
		{name: "dashed_format", value: "2025-03-01", wantErr: true},
		{name: "too_short", value: "2025031", wantErr: true},
		{name: "empty", value: "", wantErr: true},
		{name: "month_out_of_range", value: "20251301", wantErr: true},
		{name: "letters", value: "2025ab01", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			day, err := circulation.ParseDate(tc.value)

			if tc.wantErr {
				assert.ErrorIs(t, err, circulation.ErrInvalidDate)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, day)
			assert.Equal(t, tc.value, circulation.FormatDate(day))
		})
	}
}

func Test_TruncateToDay(t *testing.T) {
	moment := time.Date(2025, 3, 1, 23, 59, 59, 999, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), circulation.TruncateToDay(moment))
}

func Test_Loan_IsOverdueOn(t *testing.T) {
	loan := circulation.Loan{
		ID:      uuid.New(),
		DueDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	assert.False(t, loan.IsOverdueOn(time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)))
	assert.False(t, loan.IsOverdueOn(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)))
	assert.True(t, loan.IsOverdueOn(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func Test_IsBusinessRuleViolation(t *testing.T) {
	assert.True(t, circulation.IsBusinessRuleViolation(fmt.Errorf("%w: details", circulation.ErrOverReturn)))
	assert.True(t, circulation.IsBusinessRuleViolation(circulation.ErrLoanerNotFound))
	assert.False(t, circulation.IsBusinessRuleViolation(circulation.ErrConcurrencyConflict))
	assert.False(t, circulation.IsBusinessRuleViolation(errors.Join(circulation.ErrQueryingFailed, errors.New("boom"))))
	assert.False(t, circulation.IsBusinessRuleViolation(nil))
}

func Test_TransactionType_IsValid(t *testing.T) {
	assert.True(t, circulation.Borrow.IsValid())
	assert.True(t, circulation.Return.IsValid())
	assert.True(t, circulation.Extend.IsValid())
	assert.False(t, circulation.TransactionType("RENEW").IsValid())
}
