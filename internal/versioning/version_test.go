package versioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 59, 0, time.Local)
	assert.Equal(t, "v202401020304", Generate(ts))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "valid", input: "v202401011200", ok: true},
		{name: "without prefix", input: "202401011200", ok: true},
		{name: "too short", input: "v2024010112", ok: false},
		{name: "letters", input: "v2024O1011200", ok: false},
		{name: "invalid month", input: "v202413011200", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "latest alias", input: "latest", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, 2024, ts.Year())
				assert.Equal(t, 12, ts.Hour())
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 59, 0, 0, time.Local)
	parsed, ok := Parse(Generate(ts))
	require.True(t, ok)
	assert.True(t, ts.Equal(parsed))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare("v202301010000", "v202401010000"))
	assert.Equal(t, 1, Compare("v202401010001", "v202401010000"))
	assert.Equal(t, 0, Compare("v202401010000", "202401010000"))

	// unparseable versions order before parseable ones
	assert.Equal(t, -1, Compare("zzz", "v202401010000"))
	assert.Equal(t, 1, Compare("v202401010000", "zzz"))

	// two unparseable versions use string ordering
	assert.Equal(t, -1, Compare("alpha", "beta"))
}

func TestSort(t *testing.T) {
	versions := []string{"v202402010000", "broken", "v202301010000", "v202312310000"}

	asc := Sort(versions, false)
	assert.Equal(t, []string{"broken", "v202301010000", "v202312310000", "v202402010000"}, asc)

	desc := Sort(versions, true)
	assert.Equal(t, []string{"v202402010000", "v202312310000", "v202301010000", "broken"}, desc)

	// input is not mutated
	assert.Equal(t, "v202402010000", versions[0])
}

func TestSort_UnparseableTiesKeepInputOrder(t *testing.T) {
	versions := []string{"zeta", "alpha", "mid"}
	assert.Equal(t, versions, Sort(versions, true))
	assert.Equal(t, versions, Sort(versions, false))
}

func TestLatest(t *testing.T) {
	assert.Equal(t, "", Latest(nil))
	assert.Equal(t, "v202402010000", Latest([]string{"v202301010000", "v202402010000", "junk"}))
	assert.Equal(t, "junk", Latest([]string{"junk"}))
}

func TestNextAt_ClockAhead(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 45, 0, time.Local)
	next := NextAt([]string{"v202401010000"}, now)
	assert.Equal(t, "v202405011030", next)
}

func TestNextAt_SameMinuteBumps(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 30, 0, time.Local)
	next := NextAt([]string{"v202401010000"}, now)
	assert.Equal(t, "v202401010001", next)
}

func TestNextAt_ClockBehindBumpsFromLatest(t *testing.T) {
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.Local)
	next := NextAt([]string{"v202401012359", "v202301010000"}, now)
	assert.Equal(t, "v202401020000", next, "bump must roll over the hour and day")
}

func TestNextAt_EmptyHistory(t *testing.T) {
	now := time.Date(2024, 2, 29, 8, 15, 0, 0, time.Local)
	assert.Equal(t, "v202402290815", NextAt(nil, now))
}

func TestNextAt_AlwaysNewerThanExisting(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	existing := []string{"garbage"}
	for i := 0; i < 50; i++ {
		// clock frozen: every call lands in the same minute
		next := NextAt(existing, base)
		for _, v := range existing {
			assert.Equal(t, 1, Compare(next, v), "%s must be newer than %s", next, v)
		}
		existing = append(existing, next)
	}
}

func TestDescribe(t *testing.T) {
	info := Describe("v202401021530")
	assert.True(t, info.Valid)
	assert.Equal(t, "2024-01-02", info.Date)
	assert.Equal(t, "15:30", info.Time)

	bad := Describe("nope")
	assert.False(t, bad.Valid)
	assert.Empty(t, bad.Timestamp)
}
