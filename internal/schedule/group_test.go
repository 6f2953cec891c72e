package schedule

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_ThreeTimestamps(t *testing.T) {
	items := []models.ScheduledItem{
		item("c", "u1", "w1", "2024-01-11T08:00:00Z"),
		item("b", "u1", "w1", "2024-01-10T18:00:00Z"),
		item("a", "u1", "w1", "2024-01-10T09:00:00Z"),
	}

	g := Group(items, Ascending)

	require.Equal(t, []string{"2024-01-10", "2024-01-11"}, g.Keys)
	assert.Equal(t, []string{"a", "b"}, ids(g.Buckets["2024-01-10"]))
	assert.Equal(t, []string{"c"}, ids(g.Buckets["2024-01-11"]))
}

func TestGroup_Descending(t *testing.T) {
	items := []models.ScheduledItem{
		item("a", "u1", "w1", "2024-01-10T09:00:00Z"),
		item("c", "u1", "w1", "2024-01-11T08:00:00Z"),
		item("b", "u1", "w1", "2024-01-10T18:00:00Z"),
	}

	g := Group(items, Descending)

	require.Equal(t, []string{"2024-01-11", "2024-01-10"}, g.Keys)
	assert.Equal(t, []string{"b", "a"}, ids(g.Buckets["2024-01-10"]))
}

func TestGroup_Empty(t *testing.T) {
	for _, in := range [][]models.ScheduledItem{nil, {}} {
		g := Group(in, Ascending)
		assert.True(t, g.Empty())
		assert.Equal(t, 0, g.Len())
		assert.Empty(t, g.Flatten())
		assert.NotNil(t, g.Buckets)
	}
}

func TestGroup_FlattenReproducesSortedInput(t *testing.T) {
	items := []models.ScheduledItem{
		item("1", "u1", "w1", "2024-03-02T23:59:59Z"),
		item("2", "u1", "w1", "2024-03-01T00:00:00Z"),
		item("3", "u1", "w2", "2024-03-03T12:00:00Z"),
		item("4", "u1", "w1", "2024-03-02T00:00:00Z"),
		item("5", "u1", "w1", "2024-03-01T13:30:00Z"),
		item("6", "u1", "w2", "2024-03-02T12:00:00Z"),
	}

	tests := []struct {
		name string
		dir  Direction
	}{
		{"ascending", Ascending},
		{"descending", Descending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Group(items, tt.dir)
			flat := g.Flatten()

			require.Equal(t, ids(Sort(items, tt.dir)), ids(flat))
			require.ElementsMatch(t, ids(items), ids(flat))
			require.Equal(t, len(items), g.Len())

			for _, key := range g.Keys {
				bucket := g.Buckets[key]
				for i := 1; i < len(bucket); i++ {
					prev, cur := bucket[i-1].ScheduledAt, bucket[i].ScheduledAt
					if tt.dir == Ascending {
						assert.False(t, cur.Before(prev), "bucket %s out of order", key)
					} else {
						assert.False(t, cur.After(prev), "bucket %s out of order", key)
					}
					assert.Equal(t, key, DateKey(cur))
				}
			}
		})
	}
}

func TestSort_StableForEqualInstants(t *testing.T) {
	items := []models.ScheduledItem{
		item("x", "u1", "w1", "2024-01-10T09:00:00Z"),
		item("y", "u1", "w1", "2024-01-10T09:00:00Z"),
		item("z", "u1", "w1", "2024-01-09T09:00:00Z"),
	}

	assert.Equal(t, []string{"z", "x", "y"}, ids(Sort(items, Ascending)))
	assert.Equal(t, []string{"x", "y", "z"}, ids(Sort(items, Descending)))
	assert.Equal(t, []string{"x", "y", "z"}, ids(items), "input must not be reordered")
}

func TestDateKey_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	at := time.Date(2024, 1, 11, 2, 0, 0, 0, loc)

	assert.Equal(t, "2024-01-10", DateKey(at))
}

func TestGroupedSchedule_CloneIsIndependent(t *testing.T) {
	g := Group([]models.ScheduledItem{item("a", "u1", "w1", "2024-01-10T09:00:00Z")}, Ascending)
	c := g.clone()
	c.Buckets["2024-01-10"][0].Title = "changed"
	c.Keys[0] = "x"

	assert.Equal(t, "video a", g.Buckets["2024-01-10"][0].Title)
	assert.Equal(t, "2024-01-10", g.Keys[0])
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "asc", Ascending.String())
	assert.Equal(t, "desc", Descending.String())
}
