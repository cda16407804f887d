package http

import (
	"errors"
	"runtime/debug"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: request logging outermost,
// then error rendering with panic recovery.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

// errorHandlingMiddleware renders errors as plain-text bodies so that equal
// domain errors always produce byte-identical responses.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			path, method := observability.RouteLabels(c)

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				metrics.RecordError(path, method, "HTTP_"+strconv.Itoa(fiberErr.Code))
				c.Status(fiberErr.Code)
				c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
				_ = c.SendString(fiberErr.Message)
				err = nil
				return
			}

			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(path, method, domainErr.Code)
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed",
					zap.String("request_id", observability.RequestID(c)),
					zap.String("code", domainErr.Code),
					zap.Error(domainErr))
			}
			c.Status(domainErr.HTTPStatus)
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			_ = c.SendString(domainErr.Message)
			err = nil
		}()
		return c.Next()
	}
}
