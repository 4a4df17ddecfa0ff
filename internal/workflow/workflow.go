// Package workflow holds the task status transition table.
package workflow

import (
	"fmt"

	"github.com/Joseda-hg/taskflow/internal/model"
)

type Touch int

const (
	// TouchNever leaves the timestamp alone.
	TouchNever Touch = iota
	// TouchIfUnset stamps the timestamp only when it has never been set.
	TouchIfUnset
	// TouchAlways stamps the timestamp, overwriting any earlier value.
	TouchAlways
)

type rule struct {
	startedAt   Touch
	completedAt Touch
}

type edge struct {
	from model.Status
	to   model.Status
}

// table lists every status change. Same-status pairs are absent on purpose:
// they are no-ops.
var table = map[edge]rule{
	{model.StatusNotStarted, model.StatusInProgress}: {startedAt: TouchIfUnset},
	{model.StatusNotStarted, model.StatusCompleted}:  {completedAt: TouchAlways},
	{model.StatusInProgress, model.StatusNotStarted}: {},
	{model.StatusInProgress, model.StatusCompleted}:  {completedAt: TouchAlways},
	{model.StatusCompleted, model.StatusNotStarted}:  {},
	{model.StatusCompleted, model.StatusInProgress}:  {startedAt: TouchIfUnset},
}

// Transition is the outcome of asking to move a task to a new status.
type Transition struct {
	From   model.Status
	Status model.Status
	// Changed is false for same-status requests.
	Changed          bool
	StampStartedAt   bool
	StampCompletedAt bool
}

// Next resolves a status request against the table. startedSet reports
// whether the task already carries a started_at timestamp.
func Next(current model.Status, startedSet bool, requested model.Status) (Transition, error) {
	if !requested.Valid() {
		return Transition{}, fmt.Errorf("%w: unknown status %q", model.ErrValidation, requested)
	}
	if current == requested {
		return Transition{From: current, Status: current}, nil
	}
	if current == "" {
		current = model.StatusNotStarted
	}

	r, ok := table[edge{current, requested}]
	if !ok {
		return Transition{}, fmt.Errorf("%w: cannot move from %q to %q", model.ErrValidation, current, requested)
	}

	return Transition{
		From:             current,
		Status:           requested,
		Changed:          true,
		StampStartedAt:   stamp(r.startedAt, startedSet),
		StampCompletedAt: stamp(r.completedAt, false),
	}, nil
}

func stamp(touch Touch, alreadySet bool) bool {
	switch touch {
	case TouchAlways:
		return true
	case TouchIfUnset:
		return !alreadySet
	}
	return false
}
