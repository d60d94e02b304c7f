package measurement

import (
	"BodyMeasure/pkg/response"
	"net/http"
)

var (
	ErrNoImageProvided = response.NewError(http.StatusBadRequest, "No image file provided")
	ErrNoSelectedFile  = response.NewError(http.StatusBadRequest, "No selected file")
	ErrInvalidFileType = response.NewError(http.StatusBadRequest, "Invalid file type. Please upload a PNG or JPEG image")

	ErrFailedToProcessImage  = response.NewError(http.StatusInternalServerError, "Failed to process image")
	ErrNoPersonDetected      = response.NewError(http.StatusInternalServerError, "No person detected in the image")
	ErrMissingLandmarks      = response.NewError(http.StatusInternalServerError, "Required pose landmarks were not detected")
	ErrDegenerateCalibration = response.NewError(http.StatusInternalServerError, "Shoulder width is zero, cannot calibrate measurements")
)
