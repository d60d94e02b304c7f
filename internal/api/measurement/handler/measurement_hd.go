package measurementHandler

import (
	"BodyMeasure/internal/api/measurement"
	"BodyMeasure/internal/middleware"
	contextPkg "BodyMeasure/pkg/context"
	"BodyMeasure/pkg/handlerUtil"
	"BodyMeasure/pkg/log"
	"BodyMeasure/pkg/utils"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const imageField = "image"

func (h *MeasurementHandler) Measure(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := contextPkg.FromFiberCtx(ctx, h.requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing measurement request")

	file, err := uploadedImage(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_form_file")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, validationError(err), ctx.Path(), "validate_image_file")
	}

	imageData, err := h.utils.ReadFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
	}

	result, err := h.measurementService.Measure(c, imageData)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "measure")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"arm_size":   result.ArmSize,
			"chest_size": result.ChestSize,
		}).Info("Measurement successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, measurement.MeasureResponse(*result))
	}
}

// uploadedImage returns the file sent in the image field. A part named image without a filename is what
// browsers send for an empty file input.
func uploadedImage(ctx *fiber.Ctx) (*multipart.FileHeader, error) {
	file, err := ctx.FormFile(imageField)
	if err == nil {
		return file, nil
	}

	if form, formErr := ctx.MultipartForm(); formErr == nil {
		if _, ok := form.Value[imageField]; ok {
			return nil, measurement.ErrNoSelectedFile
		}
	}

	return nil, measurement.ErrNoImageProvided
}

func validationError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNoFile):
		return measurement.ErrNoImageProvided
	case errors.Is(err, utils.ErrEmptyFilename):
		return measurement.ErrNoSelectedFile
	default:
		return measurement.ErrInvalidFileType
	}
}

// handleMeasureWebSocket measures every binary message as an independent encoded image and answers each with
// the measurement or {"error": ...}.
func (h *MeasurementHandler) handleMeasureWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	entry := h.log.WithField("request_id", requestID)

	entry.Info("Measurement WebSocket client connected")
	defer entry.Info("Measurement WebSocket client disconnected")

	errHandler := handlerUtil.New(h.log)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			entry.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for frame := 1; ; frame++ {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			entry.Errorf("Error setting read deadline: %v", err)
			return
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				entry.Errorf("Measurement WebSocket error: %v", err)
			}
			return
		}

		if messageType != websocket.BinaryMessage {
			entry.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		frameID := fmt.Sprintf("%s-%d", requestID, frame)
		reply := h.measureFrame(frameID, message, errHandler)

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			entry.Errorf("Error setting write deadline: %v", err)
			return
		}

		if err := c.WriteJSON(reply); err != nil {
			entry.Errorf("Error writing JSON response: %v", err)
			return
		}
	}
}

func (h *MeasurementHandler) measureFrame(frameID string, imageData []byte, errHandler *handlerUtil.ErrorHandler) any {
	ctx := contextPkg.WithRequestID(context.Background(), frameID)
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	result, err := h.measurementService.Measure(ctx, imageData)
	if err != nil {
		errHandler.Resolve(frameID, err, "/measure/ws", "measure_frame")
		return errHandler.Body(err)
	}

	return measurement.MeasureResponse(*result)
}
