package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

func registerSettingsRoutes() {
	webserver.ApiGET("/settings", getSettings)
	webserver.ApiPOST("/settings", saveSettings)
}

// getSettings returns the stored settings as saved, bot token included
func getSettings(c echo.Context) error {
	return ok(c, GetAppContext(c).Settings().Load())
}

// saveSettings replaces the settings document, fields left out are cleared
func saveSettings(c echo.Context) error {
	var payload domain.Settings
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	if err := GetAppContext(c).Settings().Save(payload); err != nil {
		return failWith(c, err, "Failed to save settings")
	}
	return c.String(http.StatusOK, "OK")
}
