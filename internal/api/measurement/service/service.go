package measurementService

import (
	"BodyMeasure/internal/entity"
	"BodyMeasure/pkg/pose"
	"context"

	"github.com/sirupsen/logrus"
)

type IMeasurementService interface {
	Measure(ctx context.Context, imageData []byte) (*entity.Measurement, error)
}

type measurementService struct {
	log      *logrus.Logger
	detector pose.Detector
}

func NewMeasurementService(
	log *logrus.Logger,
	detector pose.Detector,
) IMeasurementService {
	return &measurementService{
		log:      log,
		detector: detector,
	}
}
