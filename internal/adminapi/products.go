package adminapi

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

var patchJSON = jsoniter.Config{UseNumber: true}.Froze()

type productPayload struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description" validate:"max=4000"`
	Image       string           `json:"image"`
}

// registerProductRoutes registers product CRUD and report endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	// storefront bot reads the same list under its own path
	webserver.ApiGET("/telegram/store", listProducts)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/summary", summarizeProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	return ok(c, GetAppContext(c).Catalog().List())
}

// parseID maps any id that is not a base 10 int64 to ErrNotFound, no product
// can carry it
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(domain.ErrNotFound, "product %q", c.Param("id"))
	}
	return id, nil
}

func getProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return failWith(c, err, "Product not found")
	}
	p, err := GetAppContext(c).Catalog().Get(id)
	if err != nil {
		return failWith(c, err, "Product not found")
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid product", err.Error())
	}
	if payload.Price.IsNegative() {
		return failWith(c, domain.ValidationError("price", "must not be negative"), "Invalid product")
	}

	p, err := GetAppContext(c).Catalog().Create(domain.ProductInput{
		Name:        payload.Name,
		Price:       *payload.Price,
		Description: strings.TrimSpace(payload.Description),
		Image:       strings.TrimSpace(payload.Image),
	})
	if err != nil {
		return failWith(c, err, "Failed to create product")
	}
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return failWith(c, err, "Product not found")
	}
	patch, err := decodePatch(c.Request().Body)
	if err != nil {
		return failWith(c, err, "Invalid product patch")
	}
	p, err := GetAppContext(c).Catalog().Update(id, patch)
	if err != nil {
		return failWith(c, err, "Failed to update product")
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return failWith(c, err, "Product not found")
	}
	if err := GetAppContext(c).Catalog().Delete(id); err != nil {
		return failWith(c, err, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

func exportProducts(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return GetAppContext(c).Catalog().ExportCSV(c.Response())
}

func summarizeProducts(c echo.Context) error {
	s, err := GetAppContext(c).Catalog().Summarize()
	if err != nil {
		return failWith(c, err, "Failed to summarize products")
	}
	return ok(c, s)
}

// decodePatch reads a partial product. Unknown fields and wrongly typed
// values are rejected, a client supplied id is dropped.
func decodePatch(body io.Reader) (domain.ProductPatch, error) {
	var patch domain.ProductPatch
	data, err := io.ReadAll(body)
	if err != nil {
		return patch, errors.Wrap(err, "read body")
	}
	var fields map[string]interface{}
	if err := patchJSON.Unmarshal(data, &fields); err != nil {
		return patch, domain.ValidationError("body", "must be a JSON object")
	}
	delete(fields, "id")

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(patchHook),
		Result:      &patch,
	})
	if err != nil {
		return patch, errors.Wrap(err, "patch decoder")
	}
	if err := decoder.Decode(fields); err != nil {
		return patch, domain.ValidationError("body", err.Error())
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return patch, domain.ValidationError("price", "must not be negative")
	}
	return patch, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func patchHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to == decimalType {
		switch v := data.(type) {
		case json.Number:
			return decimal.NewFromString(v.String())
		case string:
			return decimal.NewFromString(v)
		}
		return data, nil
	}
	// json.Number is a string kind, mapstructure would take it for text
	if n, isNumber := data.(json.Number); isNumber && to.Kind() == reflect.String {
		return nil, errors.Errorf("expected a string, got number %s", n)
	}
	return data, nil
}
