package measurementService

import (
	"BodyMeasure/internal/api/measurement"
	"BodyMeasure/internal/entity"
	"BodyMeasure/pkg/imaging"
	"BodyMeasure/pkg/log"
	"BodyMeasure/pkg/pose"
	"context"
	"errors"
	"fmt"
	"time"
)

func (s *measurementService) Measure(ctx context.Context, imageData []byte) (*entity.Measurement, error) {
	entry := log.WithRequestID(ctx, s.log)

	img, err := imaging.Decode(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", measurement.ErrFailedToProcessImage, err)
	}

	entry.WithFields(log.Fields{
		"width":  img.Width,
		"height": img.Height,
	}).Debug("Image decoded")

	start := time.Now()
	landmarks, err := s.detector.Detect(ctx, img)
	if err != nil {
		if errors.Is(err, pose.ErrNoDetection) {
			return nil, fmt.Errorf("%w: %v", measurement.ErrNoPersonDetected, err)
		}
		return nil, fmt.Errorf("pose detection failed: %w", err)
	}

	entry.WithFields(log.Fields{
		"landmarks":  len(landmarks),
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Pose detected")

	result, err := Calculate(landmarks, img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	entry.WithFields(log.Fields{
		"arm_size":   result.ArmSize,
		"chest_size": result.ChestSize,
	}).Info("Measurement computed")

	return result, nil
}
