package ratemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		positions []float64
		rates     []float64
		wantErr   error
	}{
		{
			name:      "valid single interval",
			positions: []float64{0},
			rates:     []float64{1.5},
		},
		{
			name:      "valid multi interval",
			positions: []float64{0, 10, 20},
			rates:     []float64{1, 0, 2},
		},
		{
			name:      "empty",
			positions: nil,
			rates:     nil,
			wantErr:   ErrBadSize,
		},
		{
			name:      "length mismatch",
			positions: []float64{0, 10},
			rates:     []float64{1},
			wantErr:   ErrBadSize,
		},
		{
			name:      "first position nonzero",
			positions: []float64{1, 10},
			rates:     []float64{1, 1},
			wantErr:   ErrBadPosition,
		},
		{
			name:      "positions not increasing",
			positions: []float64{0, 10, 10},
			rates:     []float64{1, 1, 1},
			wantErr:   ErrBadPosition,
		},
		{
			name:      "positions decreasing",
			positions: []float64{0, 10, 5},
			rates:     []float64{1, 1, 1},
			wantErr:   ErrBadPosition,
		},
		{
			name:      "negative rate",
			positions: []float64{0, 10},
			rates:     []float64{1, -0.5},
			wantErr:   ErrBadRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.positions, tt.rates)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.positions), m.Size())
		})
	}
}

func TestUniform(t *testing.T) {
	m, err := Uniform(2.5)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Size())
	assert.Equal(t, 0.0, m.Position(0))
	assert.Equal(t, 2.5, m.Rate(0))

	_, err = Uniform(-1)
	assert.ErrorIs(t, err, ErrBadRate)
}

func TestInputNotAliased(t *testing.T) {
	positions := []float64{0, 10}
	rates := []float64{1, 2}
	m, err := New(positions, rates)
	require.NoError(t, err)

	positions[1] = 99
	rates[1] = 99
	assert.Equal(t, 10.0, m.Position(1))
	assert.Equal(t, 2.0, m.Rate(1))
}

func TestIndexOf(t *testing.T) {
	m, err := New([]float64{0, 10, 20}, []float64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 0, m.IndexOf(0))
	assert.Equal(t, 0, m.IndexOf(5))
	assert.Equal(t, 1, m.IndexOf(10))
	assert.Equal(t, 1, m.IndexOf(19.999))
	assert.Equal(t, 2, m.IndexOf(20))
	assert.Equal(t, 2, m.IndexOf(1000))
}

func TestEnd(t *testing.T) {
	m, err := New([]float64{0, 10}, []float64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, 10.0, m.End(0, 50))
	assert.Equal(t, 50.0, m.End(1, 50))
	assert.Equal(t, 10.0, m.LastPosition())
}
