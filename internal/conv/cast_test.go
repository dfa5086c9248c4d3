//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)

	got, err = IntToUint32(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxInt32), got)

	_, err = IntToUint32(-1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = IntToUint32(math.MaxUint32 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestIntToUint64(t *testing.T) {
	got, err := IntToUint64(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)

	_, err = IntToUint64(-7)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorContains(t, err, "-7 does not fit uint64")
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(uint64(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}
