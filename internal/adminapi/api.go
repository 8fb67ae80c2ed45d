package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/app"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
)

const appContextKey = "appctx"

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Init registers every api route on the current web server
func Init(appCtx app.AppContext) {
	webserver.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appContextKey, appCtx)
			return next(c)
		}
	})
	registerProductRoutes()
	registerUploadRoutes()
	registerSettingsRoutes()
	registerOrderRoutes()
}

// GetAppContext returns the application the request is served by
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(appContextKey).(app.AppContext)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, errorResponse{Code: code, Message: message, Details: details})
}

// failWith maps a domain error to its http status and error code
func failWith(c echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", message, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case errors.Is(err, domain.ErrConfigurationMissing):
		return fail(c, http.StatusBadRequest, "TELEGRAM_NOT_CONFIGURED", "Telegram Bot settings not configured", nil)
	case errors.Is(err, domain.ErrDeliveryFailed):
		return fail(c, http.StatusInternalServerError, "SEND_FAILED", "Failed to send order", err.Error())
	default:
		zap.L().Error(message, zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", message, err.Error())
	}
}
