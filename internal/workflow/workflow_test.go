package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/taskflow/internal/model"
)

func TestTableCoversEveryStatusPair(t *testing.T) {
	for _, from := range model.Statuses {
		for _, to := range model.Statuses {
			tr, err := Next(from, false, to)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, from != to, tr.Changed, "%s -> %s", from, to)
			assert.Equal(t, to, tr.Status)
		}
	}
}

func TestNextStampsTimestamps(t *testing.T) {
	cases := []struct {
		from, to       model.Status
		startedSet     bool
		stampStarted   bool
		stampCompleted bool
	}{
		{model.StatusNotStarted, model.StatusInProgress, false, true, false},
		{model.StatusNotStarted, model.StatusInProgress, true, false, false},
		{model.StatusCompleted, model.StatusInProgress, true, false, false},
		{model.StatusNotStarted, model.StatusCompleted, false, false, true},
		{model.StatusInProgress, model.StatusCompleted, true, false, true},
		{model.StatusInProgress, model.StatusNotStarted, true, false, false},
		{model.StatusCompleted, model.StatusNotStarted, true, false, false},
		{model.StatusInProgress, model.StatusInProgress, false, false, false},
		{model.StatusCompleted, model.StatusCompleted, true, false, false},
	}
	for _, tc := range cases {
		tr, err := Next(tc.from, tc.startedSet, tc.to)
		require.NoError(t, err)
		assert.Equal(t, tc.stampStarted, tr.StampStartedAt, "%s -> %s started", tc.from, tc.to)
		assert.Equal(t, tc.stampCompleted, tr.StampCompletedAt, "%s -> %s completed", tc.from, tc.to)
	}
}

func TestNextRejectsUnknownStatus(t *testing.T) {
	_, err := Next(model.StatusNotStarted, false, model.Status("blocked"))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestNextTreatsMissingStatusAsNotStarted(t *testing.T) {
	tr, err := Next("", false, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotStarted, tr.From)
	assert.True(t, tr.StampStartedAt)
}
