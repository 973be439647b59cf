package circulation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func Test_GetConsistencyLevel_DefaultsToStrong(t *testing.T) {
	assert.Equal(t, circulation.StrongConsistency, circulation.GetConsistencyLevel(context.Background()))
}

func Test_GetConsistencyLevel_RespectsExplicitLevel(t *testing.T) {
	ctx := circulation.WithEventualConsistency(context.Background())
	assert.Equal(t, circulation.EventualConsistency, circulation.GetConsistencyLevel(ctx))
	assert.Equal(t, "eventual", circulation.GetConsistencyLevel(ctx).String())

	ctx = circulation.WithStrongConsistency(ctx)
	assert.Equal(t, circulation.StrongConsistency, circulation.GetConsistencyLevel(ctx))
	assert.Equal(t, "strong", circulation.GetConsistencyLevel(ctx).String())
}
