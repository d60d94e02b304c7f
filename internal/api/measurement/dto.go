package measurement

import "BodyMeasure/internal/entity"

type MeasureResponse = entity.Measurement
