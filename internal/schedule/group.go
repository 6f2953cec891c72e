package schedule

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/models"
)

// Direction orders items by ScheduledAt.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// DateKeyLayout is the layout of GroupedSchedule keys.
const DateKeyLayout = "2006-01-02"

// DateKey is the UTC calendar date of t.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// GroupedSchedule is the date-bucketed presentation of a collection.
// Keys lists the dates in first-seen order of the sorted collection;
// Buckets holds the items of each date in that same order.
type GroupedSchedule struct {
	Keys    []string
	Buckets map[string][]models.ScheduledItem
}

// Sort returns a copy of items ordered by ScheduledAt. Items with equal
// instants keep their relative input order.
func Sort(items []models.ScheduledItem, dir Direction) []models.ScheduledItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b models.ScheduledItem) int {
		c := a.ScheduledAt.Compare(b.ScheduledAt)
		if dir == Descending {
			return -c
		}
		return c
	})
	return sorted
}

// Group sorts items in the given direction and partitions them by DateKey.
func Group(items []models.ScheduledItem, dir Direction) GroupedSchedule {
	g := GroupedSchedule{Buckets: make(map[string][]models.ScheduledItem)}

	for _, item := range Sort(items, dir) {
		key := DateKey(item.ScheduledAt)
		if _, seen := g.Buckets[key]; !seen {
			g.Keys = append(g.Keys, key)
		}
		g.Buckets[key] = append(g.Buckets[key], item)
	}
	return g
}

// Flatten concatenates the buckets in key order.
func (g GroupedSchedule) Flatten() []models.ScheduledItem {
	out := make([]models.ScheduledItem, 0, g.Len())
	for _, key := range g.Keys {
		out = append(out, g.Buckets[key]...)
	}
	return out
}

// Len is the total number of items across all buckets.
func (g GroupedSchedule) Len() int {
	n := 0
	for _, items := range g.Buckets {
		n += len(items)
	}
	return n
}

// Empty reports whether there is nothing to render.
func (g GroupedSchedule) Empty() bool {
	return len(g.Keys) == 0
}

// clone copies the key list and every bucket so callers cannot mutate the
// view's internal state.
func (g GroupedSchedule) clone() GroupedSchedule {
	c := GroupedSchedule{
		Keys:    slices.Clone(g.Keys),
		Buckets: make(map[string][]models.ScheduledItem, len(g.Buckets)),
	}
	for k, v := range g.Buckets {
		c.Buckets[k] = slices.Clone(v)
	}
	return c
}
