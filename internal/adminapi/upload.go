package adminapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

func registerUploadRoutes() {
	webserver.ApiPOST("/upload", uploadImage)
}

// uploadImage stores the multipart "image" file under the upload dir as
// <unix ms>-<original name> and returns its public url.
func uploadImage(c echo.Context) error {
	cfg := GetAppContext(c).Config()
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No file", err.Error())
	}
	if limit := cfg.GetUploadMaxSize(); fh.Size > limit {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "File too large",
			fmt.Sprintf("limit is %s", bytes.FormatDecimal(limit)))
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), cleanFilename(fh.Filename))
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read upload", err.Error())
	}
	defer src.Close()

	if err := saveUpload(filepath.Join(cfg.GetUploadDir(), filename), src); err != nil {
		zap.L().Error("upload failed", zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to store upload", err.Error())
	}
	zap.L().Info("image uploaded",
		zap.String("namespace", "adminapi"),
		zap.String("file", filename),
		zap.Int64("size", fh.Size))
	return created(c, map[string]string{"url": cfg.GetPublicURL() + "/uploads/" + filename})
}

// cleanFilename keeps the base name only, NFC normalized so names typed on
// different systems map to the same file
func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = norm.NFC.String(filepath.Base(name))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "upload"
	}
	return name
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create upload dir")
	}
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(err, "create upload file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "write upload file")
	}
	return errors.Wrap(dst.Close(), "close upload file")
}
