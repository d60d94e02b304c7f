package pose

import (
	"BodyMeasure/internal/entity"
	"BodyMeasure/pkg/gemini"
	"BodyMeasure/pkg/imaging"
	"context"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const geminiPosePrompt = `
Locate the body pose of the single most prominent person in this image.
Answer with JSON only, in exactly this format:
{
	"detected": true,
	"landmarks": {
		"LEFT_SHOULDER": {"x": 0.0, "y": 0.0},
		"RIGHT_SHOULDER": {"x": 0.0, "y": 0.0},
		"LEFT_ELBOW": {"x": 0.0, "y": 0.0},
		"RIGHT_ELBOW": {"x": 0.0, "y": 0.0},
		"LEFT_WRIST": {"x": 0.0, "y": 0.0},
		"RIGHT_WRIST": {"x": 0.0, "y": 0.0}
	}
}
x and y are fractions of the image width and height, measured from the top-left corner.
LEFT and RIGHT refer to the person's own left and right, not the viewer's.
If no person is visible answer {"detected": false, "landmarks": {}}.
`

// GeminiDetector asks a Gemini multimodal model for landmarks. It trades the accuracy of a dedicated pose
// model for having no sidecar to run.
type GeminiDetector struct {
	client gemini.IGemini
	log    *logrus.Logger
}

func NewGeminiDetector(client gemini.IGemini, logger *logrus.Logger) *GeminiDetector {
	return &GeminiDetector{
		client: client,
		log:    logger,
	}
}

func (d *GeminiDetector) Detect(ctx context.Context, img *imaging.RGBImage) (entity.PoseLandmarks, error) {
	encoded, err := img.EncodePNG()
	if err != nil {
		return nil, fmt.Errorf("encode frame for gemini: %w", err)
	}

	result, err := d.client.AnalyzeImage(ctx, encoded, "image/png", geminiPosePrompt)
	if err != nil {
		return nil, fmt.Errorf("gemini pose request: %w", err)
	}

	reply, err := parseGeminiReply(result)
	if err != nil {
		d.log.WithField("reply", result).Warn("Unparseable pose reply from Gemini")
		return nil, err
	}

	return reply.landmarks()
}

func (d *GeminiDetector) Close() error {
	return d.client.Close()
}

func parseGeminiReply(response string) (*detectionReply, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in gemini response")
	}

	var reply detectionReply
	if err := jsoniter.UnmarshalFromString(response[jsonStart:jsonEnd+1], &reply); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	return &reply, nil
}
