package server

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/helmet/v2"

	"trendboard/internal/apperr"
	"trendboard/internal/config"
	"trendboard/pkg/logger"
)

const (
	AppName     = "trendboard"
	ServiceName = "trendboard"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// metrics returns the process-wide HTTP collector. It registers into the
// default Prometheus registry, so it may only be built once per process.
func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(ServiceName)
	})
	return prom
}

// Create builds the fiber app with the shared middleware stack. Routes are
// registered by the caller.
func Create(conf config.ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      AppName,
		ServerHeader: AppName,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		// bounded so app.ShutdownWithTimeout does not wait on idle keep-alives
		IdleTimeout:  conf.ShutdownTimeout,
		ErrorHandler: ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		Immutable:    true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			logger.GetLogger().WithFields(map[string]interface{}{
				"component": "http",
				"path":      c.Path(),
				"stack":     string(buf),
			}).Error(fmt.Sprintf("panic: %v", e))
		},
	}))
	app.Use(requestid.New())
	app.Use(AccessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, OPTIONS",
	}))
	app.Use(helmet.New(helmet.Config{
		ReferrerPolicy: "strict-origin-when-cross-origin",
		// map images are hot-linked from another origin
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))

	p := metrics()
	p.RegisterAt(app, "/metrics")
	app.Use(p.Middleware)

	return app
}

// NewSessionStore keeps the last keyword and country per browser in memory.
func NewSessionStore(conf config.SessionConfig) *session.Store {
	return session.New(session.Config{
		Expiration:     conf.Expiration,
		KeyLookup:      "cookie:" + conf.CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// AccessLog writes one line per request through the shared logger.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var ae *apperr.Error
		var fe *fiber.Error
		switch {
		case errors.As(err, &ae):
			status = ae.StatusCode
		case errors.As(err, &fe):
			status = fe.Code
		case err != nil:
			status = fiber.StatusInternalServerError
		}

		zl := logger.GetLogger().Zerolog()
		event := zl.Info()
		if err != nil {
			event = event.Err(err)
		}
		event.
			Str("component", "httpreq").
			Interface("request_id", c.Locals("requestid")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int("size", len(c.Response().Body())).
			Dur("duration", time.Since(start)).
			Msg("received request")
		return err
	}
}

func handleCustomError(c *fiber.Ctx, e *apperr.Error) error {
	logger.GetLogger().WithFields(map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
		"code":   e.ErrorCode,
	}).Warn(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}
	if e.Extras != nil {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}
	return c.Status(e.StatusCode).JSON(body)
}

// ErrorHandler renders *apperr.Error as JSON; anything else becomes a 500,
// or the status of a *fiber.Error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return handleCustomError(c, ae)
	}

	re := *apperr.ErrInternalError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
	} else {
		logger.GetLogger().WithError(err).WithFields(map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("Internal Server Error")
	}
	return handleCustomError(c, &re)
}
