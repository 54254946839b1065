package story

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnsupportedSortKey   = errors.New("unsupported sort key")
	ErrUnsupportedDirection = errors.New("unsupported sort direction")
)

// Order is the story attribute that drives comparison.
type Order string

const (
	OrderName       Order = "name"
	OrderLastUpdate Order = "lastUpdate"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortState is the (order, direction) pair governing list presentation.
// The zero value is not valid; start from DefaultSortState.
type SortState struct {
	Order     Order
	Direction Direction
}

// DefaultSortState is A to Z by name.
func DefaultSortState() SortState {
	return SortState{Order: OrderName, Direction: Asc}
}

// SortByName toggles direction when already sorting by name,
// otherwise switches to name ascending.
func SortByName(s SortState) SortState {
	if s.Order == OrderName {
		return SortState{Order: OrderName, Direction: s.Direction.flip()}
	}
	return SortState{Order: OrderName, Direction: Asc}
}

// SortByDate toggles direction when already sorting by last update,
// otherwise switches to newest first.
func SortByDate(s SortState) SortState {
	if s.Order == OrderLastUpdate {
		return SortState{Order: OrderLastUpdate, Direction: s.Direction.flip()}
	}
	return SortState{Order: OrderLastUpdate, Direction: Desc}
}

// SortedView returns the stories ordered by state. The input slice is
// never reordered; ties keep their input order in both directions.
func SortedView(stories []Story, state SortState) ([]Story, error) {
	if len(stories) == 0 {
		return stories, nil
	}

	var cmp func(a, b Story) int
	switch state.Order {
	case OrderName:
		cmp = func(a, b Story) int { return strings.Compare(a.Name, b.Name) }
	case OrderLastUpdate:
		cmp = func(a, b Story) int { return a.LastUpdate.Compare(b.LastUpdate) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSortKey, state.Order)
	}

	if state.Direction == Desc {
		asc := cmp
		cmp = func(a, b Story) int { return asc(b, a) }
	}

	out := slices.Clone(stories)
	slices.SortStableFunc(out, cmp)
	return out, nil
}

func ParseOrder(s string) (Order, error) {
	switch strings.TrimSpace(s) {
	case "name":
		return OrderName, nil
	case "lastUpdate", "date", "updated":
		return OrderLastUpdate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedSortKey, s)
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDirection, s)
}
