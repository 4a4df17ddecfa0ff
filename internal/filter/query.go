package filter

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/Joseda-hg/taskflow/internal/model"
)

var ErrInvalidFilter = errors.New("invalid filter")

type Dimension string

const (
	DimensionPriority  Dimension = "priority"
	DimensionSize      Dimension = "size"
	DimensionCategory  Dimension = "category"
	DimensionTimeFrame Dimension = "time_frame"
)

// ParseSpec reads a spec from repeated or comma separated query parameters.
func ParseSpec(values url.Values) (Spec, error) {
	var spec Spec
	for _, raw := range splitValues(values[string(DimensionPriority)]) {
		value := model.Priority(strings.ToLower(raw))
		if !value.Valid() {
			return Spec{}, fmt.Errorf("%w: priority %q", ErrInvalidFilter, raw)
		}
		spec.Priorities = appendUnique(spec.Priorities, value)
	}
	for _, raw := range splitValues(values[string(DimensionSize)]) {
		value := model.Size(strings.ToUpper(raw))
		if !value.Valid() {
			return Spec{}, fmt.Errorf("%w: size %q", ErrInvalidFilter, raw)
		}
		spec.Sizes = appendUnique(spec.Sizes, value)
	}
	for _, raw := range splitValues(values[string(DimensionCategory)]) {
		value := model.Category(strings.ToLower(raw))
		if !value.Valid() {
			return Spec{}, fmt.Errorf("%w: category %q", ErrInvalidFilter, raw)
		}
		spec.Categories = appendUnique(spec.Categories, value)
	}
	for _, raw := range splitValues(values[string(DimensionTimeFrame)]) {
		value := TimeFrame(strings.ToLower(raw))
		if !value.Valid() {
			return Spec{}, fmt.Errorf("%w: time frame %q", ErrInvalidFilter, raw)
		}
		spec.TimeFrames = appendUnique(spec.TimeFrames, value)
	}
	return spec, nil
}

// Values encodes the spec so that ParseSpec(spec.Values()) returns it.
func (s Spec) Values() url.Values {
	values := url.Values{}
	for _, v := range s.Priorities {
		values.Add(string(DimensionPriority), string(v))
	}
	for _, v := range s.Sizes {
		values.Add(string(DimensionSize), string(v))
	}
	for _, v := range s.Categories {
		values.Add(string(DimensionCategory), string(v))
	}
	for _, v := range s.TimeFrames {
		values.Add(string(DimensionTimeFrame), string(v))
	}
	return values
}

// Without drops a single value from one dimension.
func (s Spec) Without(dimension Dimension, value string) Spec {
	out := Spec{
		Priorities: slices.Clone(s.Priorities),
		Sizes:      slices.Clone(s.Sizes),
		Categories: slices.Clone(s.Categories),
		TimeFrames: slices.Clone(s.TimeFrames),
	}
	switch dimension {
	case DimensionPriority:
		out.Priorities = slices.DeleteFunc(out.Priorities, func(v model.Priority) bool { return string(v) == value })
	case DimensionSize:
		out.Sizes = slices.DeleteFunc(out.Sizes, func(v model.Size) bool { return string(v) == value })
	case DimensionCategory:
		out.Categories = slices.DeleteFunc(out.Categories, func(v model.Category) bool { return string(v) == value })
	case DimensionTimeFrame:
		out.TimeFrames = slices.DeleteFunc(out.TimeFrames, func(v TimeFrame) bool { return string(v) == value })
	}
	return out
}

// Chip is one active filter value as the list page shows it.
type Chip struct {
	Dimension Dimension
	Value     string
	Label     string
}

func (s Spec) Chips() []Chip {
	chips := make([]Chip, 0, len(s.Priorities)+len(s.Sizes)+len(s.Categories)+len(s.TimeFrames))
	for _, v := range s.Priorities {
		chips = append(chips, Chip{Dimension: DimensionPriority, Value: string(v), Label: string(v)})
	}
	for _, v := range s.Sizes {
		chips = append(chips, Chip{Dimension: DimensionSize, Value: string(v), Label: string(v)})
	}
	for _, v := range s.Categories {
		chips = append(chips, Chip{Dimension: DimensionCategory, Value: string(v), Label: string(v)})
	}
	for _, v := range s.TimeFrames {
		chips = append(chips, Chip{Dimension: DimensionTimeFrame, Value: string(v), Label: v.DisplayName()})
	}
	return chips
}

func splitValues(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			out = append(out, trimmed)
		}
	}
	return out
}

func appendUnique[T comparable](list []T, value T) []T {
	if slices.Contains(list, value) {
		return list
	}
	return append(list, value)
}
