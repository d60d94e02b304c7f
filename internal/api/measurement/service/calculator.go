package measurementService

import (
	"BodyMeasure/internal/api/measurement"
	"BodyMeasure/internal/entity"
	"fmt"
	"math"
)

// The only real-world anchors of the calculation, both population averages.
const (
	AssumedShoulderWidthCM = 45.0
	ChestDepthRatio        = 0.7
)

// Calculate derives arm length and chest circumference from a landmark set detected on a width x height image.
func Calculate(landmarks entity.PoseLandmarks, width, height int) (*entity.Measurement, error) {
	leftShoulder, err := requireLandmark(landmarks, entity.LeftShoulder, width, height)
	if err != nil {
		return nil, err
	}
	rightShoulder, err := requireLandmark(landmarks, entity.RightShoulder, width, height)
	if err != nil {
		return nil, err
	}
	rightWrist, err := requireLandmark(landmarks, entity.RightWrist, width, height)
	if err != nil {
		return nil, err
	}

	armPx := distance(rightShoulder, rightWrist)
	chestWidthPx := distance(leftShoulder, rightShoulder)

	if chestWidthPx == 0 || !isFinite(chestWidthPx) || !isFinite(armPx) {
		return nil, fmt.Errorf("%w: shoulder distance %v px", measurement.ErrDegenerateCalibration, chestWidthPx)
	}

	chestDepthPx := chestWidthPx * ChestDepthRatio
	// Perimeter of a width x depth rectangle standing in for the chest cross-section.
	chestPx := 2 * (chestWidthPx + chestDepthPx)

	pxToCM := AssumedShoulderWidthCM / chestWidthPx
	armCM := armPx * pxToCM
	chestCM := chestPx * pxToCM

	// A subnormal shoulder distance is non-zero but still overflows the scale factor.
	if !isFinite(armCM) || !isFinite(chestCM) {
		return nil, fmt.Errorf("%w: shoulder distance %v px", measurement.ErrDegenerateCalibration, chestWidthPx)
	}

	return &entity.Measurement{
		ArmSize:   roundTenth(armCM),
		ChestSize: roundTenth(chestCM),
	}, nil
}

func requireLandmark(landmarks entity.PoseLandmarks, name entity.LandmarkName, width, height int) (entity.Point, error) {
	l, ok := landmarks[name]
	if !ok {
		return entity.Point{}, fmt.Errorf("%w: %s", measurement.ErrMissingLandmarks, name)
	}
	return l.ToPixel(width, height), nil
}

func distance(a, b entity.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}
