// Package pose wraps the external pose-landmark models the service measures with. Implementations are
// built once at startup and shared by every request.
package pose

import (
	"BodyMeasure/internal/entity"
	"BodyMeasure/pkg/imaging"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrNoDetection means the model ran but found no person in the image.
var ErrNoDetection = errors.New("no pose detected")

type Detector interface {
	// Detect locates the landmarks of a single person in img. It returns ErrNoDetection when nobody is found.
	Detect(ctx context.Context, img *imaging.RGBImage) (entity.PoseLandmarks, error)
	Close() error
}

// detectionReply is the JSON document every backend answers with.
type detectionReply struct {
	Detected  bool                 `json:"detected"`
	Landmarks entity.PoseLandmarks `json:"landmarks" validate:"dive"`
	Error     string               `json:"error,omitempty"`
}

var replyValidator = newReplyValidator()

func newReplyValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

func (r *detectionReply) landmarks() (entity.PoseLandmarks, error) {
	if r.Error != "" {
		return nil, fmt.Errorf("pose model error: %s", r.Error)
	}

	if !r.Detected || len(r.Landmarks) == 0 {
		return nil, ErrNoDetection
	}

	if err := replyValidator.Struct(r); err != nil {
		return nil, fmt.Errorf("invalid pose reply: %w", err)
	}

	return r.Landmarks, nil
}
