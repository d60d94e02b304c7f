package measurementHandler

import (
	measurementService "BodyMeasure/internal/api/measurement/service"
	"BodyMeasure/internal/middleware"
	"BodyMeasure/pkg/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type MeasurementHandler struct {
	log                *logrus.Logger
	middleware         middleware.Middleware
	measurementService measurementService.IMeasurementService
	utils              utils.IUtils
	requestTimeout     time.Duration
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	ms measurementService.IMeasurementService,
	utils utils.IUtils,
	requestTimeout time.Duration,
) *MeasurementHandler {
	return &MeasurementHandler{
		log:                log,
		middleware:         middleware,
		measurementService: ms,
		utils:              utils,
		requestTimeout:     requestTimeout,
	}
}

func (h *MeasurementHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/measure", h.Measure)

	srv.Use("/measure/ws", wsMiddleware)
	srv.Get("/measure/ws", websocket.New(h.handleMeasureWebSocket))
}
