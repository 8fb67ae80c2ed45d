package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
)

type orderPayload struct {
	Product struct {
		Name  string          `json:"name" validate:"required"`
		Price decimal.Decimal `json:"price"`
	} `json:"product"`
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

func registerOrderRoutes() {
	webserver.ApiPOST("/order", postOrder)
}

// postOrder forwards a customer order to the configured Telegram chat.
// Request JSON: { "product": {"name": "Chair", "price": 100}, "name": "Ann", "phone": "555" }
func postOrder(c echo.Context) error {
	var payload orderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Phone = strings.TrimSpace(payload.Phone)
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "product.name, name and phone are required", err.Error())
	}

	outcome, err := GetAppContext(c).Dispatcher().Dispatch(c.Request().Context(), domain.Order{
		Product: domain.OrderProduct{Name: payload.Product.Name, Price: payload.Product.Price},
		Name:    payload.Name,
		Phone:   payload.Phone,
	})
	if err != nil {
		zap.L().Warn("order not sent",
			zap.String("namespace", "adminapi"),
			zap.Stringer("outcome", outcome),
			zap.Error(err))
		return failWith(c, err, "Failed to send order")
	}
	return c.String(http.StatusOK, "Order sent to Telegram")
}
