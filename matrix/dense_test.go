package matrix

import (
	"testing"

	"github.com/hupe1980/megamerge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDense(t *testing.T) {
	m, err := NewDense(2, 2, []float64{0, 10, 5, 15})
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 15.0, m.At(1, 1))
	assert.Equal(t, []float64{5, 15}, m.Row(1))

	_, err = NewDense(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDataLength)

	_, err = NewDense(-1, 2, nil)
	assert.ErrorIs(t, err, ErrNegativeDims)

	z, err := NewDense(3, 2, nil)
	require.NoError(t, err)
	assert.Len(t, z.RawData(), 6)

	assert.Panics(t, func() { m.At(2, 0) })
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float64{{0, 10}, {20, 30}})
	require.NoError(t, err)

	ivs, err := m.Intervals()
	require.NoError(t, err)
	assert.Equal(t, []model.Interval{{From: 0, To: 10}, {From: 20, To: 30}}, ivs)

	_, err = FromRows([][]float64{{0, 10}, {1}})
	assert.ErrorIs(t, err, ErrRaggedRows)

	empty, err := FromRows(nil)
	require.NoError(t, err)
	ivs, err = empty.Intervals()
	require.NoError(t, err)
	assert.Empty(t, ivs)
	assert.NotNil(t, ivs)
}

func TestIntervals_Shape(t *testing.T) {
	m, err := NewDense(2, 3, []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	_, err = m.Intervals()
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Cols)
	assert.Equal(t, 2, se.Want)
	assert.Contains(t, se.Error(), "2x3")

	// No rows is an empty set, whatever the column count.
	none, err := NewDense(0, 3, nil)
	require.NoError(t, err)
	ivs, err := none.Intervals()
	require.NoError(t, err)
	assert.Empty(t, ivs)
}

func TestIntervals_Copies(t *testing.T) {
	data := []float64{0, 10}
	m, err := NewDense(1, 2, data)
	require.NoError(t, err)

	ivs, err := m.Intervals()
	require.NoError(t, err)
	data[0] = 99
	assert.Equal(t, 0.0, ivs[0].From)
}

func TestFromIntervals(t *testing.T) {
	src := []model.Interval{{From: 1, To: 2}, {From: 3, To: 4}}
	m := FromIntervals(src)
	got, err := m.Intervals()
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
