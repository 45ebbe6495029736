package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSE(t *testing.T) {
	tests := []struct {
		name   string
		pred   []float64
		actual []float64
		want   float64
	}{
		{"identical", []float64{3.5, 7, 12.25}, []float64{3.5, 7, 12.25}, 0},
		{"constant offset", []float64{1, 2, 3}, []float64{2, 3, 4}, 1},
		{"mixed", []float64{0, 0}, []float64{3, 4}, 3.5355339059327378},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RMSE(tt.pred, tt.actual)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRMSE_SelfIsZero(t *testing.T) {
	y := []float64{12.5, 3, 88.1, 0, 4000}
	got, err := RMSE(y, y)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestRMSE_Errors(t *testing.T) {
	_, err := RMSE([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = RMSE(nil, nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestR2(t *testing.T) {
	actual := []float64{1, 2, 3, 4}

	got, err := R2(actual, actual)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = R2([]float64{2.5, 2.5, 2.5, 2.5}, actual)
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12, "predicting the mean scores zero")

	got, err = R2([]float64{1, 1}, []float64{5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = R2([]float64{1}, actual)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
