package megamerge

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/megamerge/matrix"
	"github.com/hupe1980/megamerge/model"
	"github.com/hupe1980/megamerge/testutil"
)

func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	return m
}

func TestScanner_Basic(t *testing.T) {
	seg := mustDense(t, [][]float64{{0, 10}})
	data := mustDense(t, [][]float64{{5, 15}, {20, 30}})

	t.Run("threshold zero", func(t *testing.T) {
		sc, err := New(seg, data, 0)
		require.NoError(t, err)
		defer sc.Close()

		batch, ok := sc.Next()
		require.True(t, ok)
		assert.Equal(t, 0, batch.Segment)
		require.Len(t, batch.Results, 1)

		r := batch.Results[0]
		assert.Equal(t, 0, r.DataIndex)
		assert.InDelta(t, 5.0, r.Overlap, 1e-12)
		assert.InDelta(t, 0.5, r.OverDataLength, 1e-12)
		assert.InDelta(t, 0.5, r.OverSegmentLength, 1e-12)

		_, ok = sc.Next()
		assert.False(t, ok)
	})

	t.Run("threshold is strict", func(t *testing.T) {
		sc, err := New(seg, data, 5)
		require.NoError(t, err)
		defer sc.Close()

		batch, ok := sc.Next()
		require.True(t, ok)
		assert.NotNil(t, batch.Results)
		assert.Empty(t, batch.Results)
	})
}

func TestScanner_EmptyData(t *testing.T) {
	segs := []model.Interval{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}}

	sc, err := NewFromIntervals(segs, nil, 0)
	require.NoError(t, err)
	defer sc.Close()

	count := 0
	for i, batch := range sc.All() {
		assert.Equal(t, count, i)
		assert.NotNil(t, batch.Results)
		assert.Empty(t, batch.Results)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestScanner_EmptySegmentation(t *testing.T) {
	data := []model.Interval{{From: 0, To: 1}}

	sc, err := NewFromIntervals(nil, data, 0)
	require.NoError(t, err)
	defer sc.Close()

	assert.True(t, sc.Exhausted())
	batch, ok := sc.Next()
	assert.False(t, ok)
	assert.Equal(t, model.Batch{}, batch)
}

func TestScanner_ZeroRowMatrix(t *testing.T) {
	empty, err := matrix.NewDense(0, 5, nil)
	require.NoError(t, err)

	sc, err := New(empty, empty, 0)
	require.NoError(t, err)
	defer sc.Close()

	assert.Equal(t, 0, sc.Len())
	assert.Equal(t, 0, sc.DataLen())
}

func TestScanner_ExhaustedIsStable(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	sc, err := NewFromIntervals(
		[]model.Interval{{From: 0, To: 1}},
		[]model.Interval{{From: 0, To: 1}},
		0,
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)
	defer sc.Close()

	_, ok := sc.Next()
	require.True(t, ok)

	for range 3 {
		batch, ok := sc.Next()
		assert.False(t, ok)
		assert.Equal(t, model.Batch{}, batch)
		assert.Equal(t, 1, sc.Cursor())
		assert.Equal(t, 0, sc.Remaining())
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.AdvanceCount)
	assert.Equal(t, int64(3), stats.ExhaustedCalls)
	assert.Equal(t, int64(1), stats.ScannedPairs)
	assert.Equal(t, int64(1), stats.MatchedPairs)
}

func TestScanner_MatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(42)
	segs := rng.Tiling(20, 0, 1000)
	data := rng.Intervals(5000, 0, 1000, 50)

	for _, threshold := range []float64{-10, 0, 5, 25} {
		want := testutil.BruteForce(segs, data, threshold)

		for _, opts := range [][]Option{
			{WithWorkers(1)},
			{WithWorkers(4), WithChunkSize(64)},
			{WithWorkers(0), WithChunkSize(1)},
		} {
			sc, err := NewFromIntervals(segs, data, threshold, opts...)
			require.NoError(t, err)

			var got []model.Batch
			for _, batch := range sc.All() {
				got = append(got, batch)
			}
			require.NoError(t, sc.Close())

			assert.Equal(t, want, got)
		}
	}
}

func TestScanner_Deterministic(t *testing.T) {
	rng := testutil.NewRNG(7)
	segs := rng.Intervals(10, 0, 100, 20)
	data := rng.Intervals(2000, 0, 100, 5)

	run := func() []model.Batch {
		sc, err := NewFromIntervals(segs, data, 0.5, WithWorkers(8), WithChunkSize(16))
		require.NoError(t, err)
		defer sc.Close()

		var out []model.Batch
		for _, b := range sc.All() {
			out = append(out, b)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestScanner_EarlyStop(t *testing.T) {
	segs := []model.Interval{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}}
	data := []model.Interval{{From: 0, To: 3}}

	sc, err := NewFromIntervals(segs, data, 0)
	require.NoError(t, err)
	defer sc.Close()

	for i := range sc.All() {
		if i == 0 {
			break
		}
	}
	assert.Equal(t, 1, sc.Cursor())
	assert.Equal(t, 2, sc.Remaining())

	batch, ok := sc.Next()
	require.True(t, ok)
	assert.Equal(t, 1, batch.Segment)
}

func TestScanner_InputsAreCopied(t *testing.T) {
	segs := []model.Interval{{From: 0, To: 10}}
	data := []model.Interval{{From: 5, To: 15}}

	sc, err := NewFromIntervals(segs, data, 0)
	require.NoError(t, err)
	defer sc.Close()

	segs[0] = model.Interval{From: 100, To: 200}
	data[0] = model.Interval{From: 100, To: 200}

	got := sc.Data()
	got[0].From = -1

	assert.Equal(t, []model.Interval{{From: 0, To: 10}}, sc.Segmentation())
	assert.Equal(t, []model.Interval{{From: 5, To: 15}}, sc.Data())

	batch, ok := sc.Next()
	require.True(t, ok)
	require.Len(t, batch.Results, 1)
	assert.InDelta(t, 5.0, batch.Results[0].Overlap, 1e-12)
}

func TestScanner_DegenerateIntervals(t *testing.T) {
	// Reversed intervals are not rejected.
	segs := []model.Interval{{From: 10, To: 0}}
	data := []model.Interval{{From: 2, To: 8}}

	sc, err := NewFromIntervals(segs, data, -100)
	require.NoError(t, err)
	defer sc.Close()

	batch, ok := sc.Next()
	require.True(t, ok)
	require.Len(t, batch.Results, 1)

	r := batch.Results[0]
	assert.InDelta(t, -10.0, r.Overlap, 1e-12)
	assert.InDelta(t, -10.0/6.0, r.OverDataLength, 1e-12)
	assert.InDelta(t, 1.0, r.OverSegmentLength, 1e-12)
}

func TestScanner_Accessors(t *testing.T) {
	sc, err := NewFromIntervals(
		[]model.Interval{{From: 0, To: 1}, {From: 1, To: 2}},
		[]model.Interval{{From: 0, To: 2}},
		0.25,
	)
	require.NoError(t, err)
	defer sc.Close()

	assert.Equal(t, 2, sc.Len())
	assert.Equal(t, 1, sc.DataLen())
	assert.Equal(t, 0.25, sc.Threshold())
	assert.Equal(t, 0, sc.Cursor())
	assert.Equal(t, 2, sc.Remaining())
	assert.False(t, sc.Exhausted())
	assert.Equal(t, int64(0), sc.Footprint())
}

func TestScanner_InvalidMatrix(t *testing.T) {
	good := mustDense(t, [][]float64{{0, 1}})
	bad := mustDense(t, [][]float64{{0, 1, 2}})

	_, err := New(bad, good, 0)
	var ime *ErrInvalidMatrix
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, "segmentation", ime.Name)
	assert.Equal(t, 1, ime.Rows)
	assert.Equal(t, 3, ime.Columns)

	var se *matrix.ShapeError
	assert.ErrorAs(t, err, &se)

	_, err = New(good, bad, 0)
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, "data", ime.Name)

	_, err = New(nil, good, 0)
	assert.ErrorIs(t, err, ErrNilMatrix)
}

func TestScanner_MemoryLimit(t *testing.T) {
	segs := make([]model.Interval, 4)
	data := make([]model.Interval, 4)

	_, err := NewFromIntervals(segs, data, 0, WithMemoryLimit(64))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMemoryLimitExceeded))

	sc, err := NewFromIntervals(segs, data, 0, WithMemoryLimit(128))
	require.NoError(t, err)
	assert.Equal(t, int64(128), sc.Footprint())

	require.NoError(t, sc.Close())
	assert.Equal(t, int64(0), sc.Footprint())
	require.NoError(t, sc.Close())
}

func TestScanner_UsableAfterClose(t *testing.T) {
	rng := testutil.NewRNG(3)
	segs := rng.Tiling(4, 0, 100)
	data := rng.Intervals(500, 0, 100, 10)
	want := testutil.BruteForce(segs, data, 0)

	sc, err := NewFromIntervals(segs, data, 0, WithWorkers(4), WithChunkSize(8))
	require.NoError(t, err)

	first, ok := sc.Next()
	require.True(t, ok)
	assert.Equal(t, want[0], first)

	require.NoError(t, sc.Close())

	i := 1
	for _, batch := range sc.All() {
		assert.Equal(t, want[i], batch)
		i++
	}
	assert.Equal(t, 4, i)
}

func TestScanner_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, slog.LevelDebug)

	sc, err := NewFromIntervals(
		[]model.Interval{{From: 0, To: 10}},
		[]model.Interval{{From: 5, To: 15}},
		0,
		WithLogger(logger),
	)
	require.NoError(t, err)
	defer sc.Close()

	for range sc.All() {
	}
	_, _ = sc.Next()

	out := buf.String()
	assert.Contains(t, out, `"msg":"scanner constructed"`)
	assert.Contains(t, out, `"msg":"segment scanned"`)
	assert.Contains(t, out, `"matched":1`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"msg":"scanner exhausted"`)))
}

func TestOptions_NilValues(t *testing.T) {
	o := applyOptions([]Option{nil, WithLogger(nil), WithMetricsCollector(nil)})
	assert.NotNil(t, o.logger)
	assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)

	o = applyOptions([]Option{WithWorkers(1), WithChunkSize(32)})
	assert.True(t, o.sequential)
	assert.Equal(t, 32, o.chunkSize)
}

func BenchmarkScanner_Next(b *testing.B) {
	rng := testutil.NewRNG(1)
	data := rng.Intervals(100_000, 0, 1e6, 100)
	seg := []model.Interval{{From: 250_000, To: 750_000}}

	sc, err := NewFromIntervals(seg, data, 0)
	require.NoError(b, err)
	defer sc.Close()

	for b.Loop() {
		sc.cursor = 0
		_, _ = sc.Next()
	}
}
