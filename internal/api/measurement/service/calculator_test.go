package measurementService

import (
	"BodyMeasure/internal/api/measurement"
	"BodyMeasure/internal/entity"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goldenLandmarks() entity.PoseLandmarks {
	return entity.PoseLandmarks{
		entity.LeftShoulder:  {X: 0.3, Y: 0.4},
		entity.RightShoulder: {X: 0.7, Y: 0.4},
		entity.RightWrist:    {X: 0.75, Y: 0.8},
	}
}

func TestCalculate_Golden(t *testing.T) {
	// Shoulders land on (30,40) and (70,40): 40px wide, so 1px = 1.125cm. The chest perimeter is
	// 2*(40+28) = 136px = 153cm. The wrist at (75,80) is sqrt(1625) = 40.311px from the right shoulder,
	// 45.350cm after scaling.
	got, err := Calculate(goldenLandmarks(), 100, 100)
	require.NoError(t, err)

	assert.Equal(t, &entity.Measurement{ArmSize: 45.4, ChestSize: 153.0}, got)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		landmarks entity.PoseLandmarks
		width     int
		height    int
		want      *entity.Measurement
	}{
		{
			name: "chest is independent of scale",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: 0.25, Y: 0.3},
				entity.RightShoulder: {X: 0.75, Y: 0.3},
				entity.RightWrist:    {X: 0.75, Y: 0.3},
			},
			width:  1920,
			height: 1080,
			want:   &entity.Measurement{ArmSize: 0, ChestSize: 153.0},
		},
		{
			name: "arm as long as the shoulders are wide",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: 0.2, Y: 0.5},
				entity.RightShoulder: {X: 0.6, Y: 0.5},
				entity.RightWrist:    {X: 0.6, Y: 0.9},
			},
			width:  200,
			height: 200,
			want:   &entity.Measurement{ArmSize: 45.0, ChestSize: 153.0},
		},
		{
			name: "non-square image scales axes separately",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: 0.4, Y: 0.5},
				entity.RightShoulder: {X: 0.6, Y: 0.5},
				entity.RightWrist:    {X: 0.6, Y: 0.65},
			},
			// shoulders 80px apart, wrist 90px below
			width:  400,
			height: 600,
			want:   &entity.Measurement{ArmSize: 50.6, ChestSize: 153.0},
		},
		{
			name: "extra landmarks are ignored",
			landmarks: entity.PoseLandmarks{
				entity.Nose:          {X: 0.5, Y: 0.1},
				entity.LeftShoulder:  {X: 0.3, Y: 0.4},
				entity.RightShoulder: {X: 0.7, Y: 0.4},
				entity.RightWrist:    {X: 0.75, Y: 0.8},
				entity.LeftWrist:     {X: 0.1, Y: 0.9},
			},
			width:  100,
			height: 100,
			want:   &entity.Measurement{ArmSize: 45.4, ChestSize: 153.0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.landmarks, tc.width, tc.height)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculate_MissingLandmarks(t *testing.T) {
	for _, name := range []entity.LandmarkName{entity.LeftShoulder, entity.RightShoulder, entity.RightWrist} {
		t.Run(string(name), func(t *testing.T) {
			landmarks := goldenLandmarks()
			delete(landmarks, name)

			got, err := Calculate(landmarks, 100, 100)
			require.Error(t, err)
			assert.ErrorIs(t, err, measurement.ErrMissingLandmarks)
			assert.Contains(t, err.Error(), string(name))
			assert.Nil(t, got)
		})
	}
}

func TestCalculate_Degenerate(t *testing.T) {
	tests := []struct {
		name      string
		landmarks entity.PoseLandmarks
	}{
		{
			name: "coinciding shoulders",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: 0.5, Y: 0.4},
				entity.RightShoulder: {X: 0.5, Y: 0.4},
				entity.RightWrist:    {X: 0.6, Y: 0.8},
			},
		},
		{
			name: "infinite shoulder",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: math.Inf(1), Y: 0.4},
				entity.RightShoulder: {X: 0.5, Y: 0.4},
				entity.RightWrist:    {X: 0.6, Y: 0.8},
			},
		},
		{
			name: "subnormal shoulder distance",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: 0, Y: 0},
				entity.RightShoulder: {X: 5e-324, Y: 0},
				entity.RightWrist:    {X: 0.1, Y: 0.1},
			},
		},
		{
			name: "NaN wrist",
			landmarks: entity.PoseLandmarks{
				entity.LeftShoulder:  {X: 0.3, Y: 0.4},
				entity.RightShoulder: {X: 0.7, Y: 0.4},
				entity.RightWrist:    {X: math.NaN(), Y: 0.8},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.landmarks, 100, 100)
			require.Error(t, err)
			assert.ErrorIs(t, err, measurement.ErrDegenerateCalibration)
			assert.Nil(t, got)
		})
	}
}

func TestCalculate_OneDecimal(t *testing.T) {
	landmarks := entity.PoseLandmarks{
		entity.LeftShoulder:  {X: 0.31, Y: 0.42},
		entity.RightShoulder: {X: 0.69, Y: 0.41},
		entity.RightWrist:    {X: 0.77, Y: 0.83},
	}

	got, err := Calculate(landmarks, 637, 911)
	require.NoError(t, err)

	for _, v := range []float64{got.ArmSize, got.ChestSize} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		assert.Positive(t, v)
		assert.InDelta(t, math.Round(v*10), v*10, 1e-9)
	}
}
