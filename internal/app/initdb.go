package app

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// checkDirs creates the data, upload and log directories when missing
func (a *Application) checkDirs() error {
	dirs := []string{a.appConfig.GetDataDir(), a.appConfig.GetUploadDir()}
	if a.appConfig.Logger.FileEnable {
		dirs = append(dirs, filepath.Dir(a.appConfig.GetLogFile()))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create dir %s", dir)
		}
	}
	return nil
}

// checkStores refuses to start on a products file that exists but cannot be
// decoded, the first save would replace it with whatever the catalog holds.
// storage.ignore_corrupt starts with an empty catalog instead. A corrupt
// settings file only falls back to defaults.
func (a *Application) checkStores() error {
	if err := a.catalog.Check(); err != nil {
		if !a.appConfig.Storage.IgnoreCorrupt {
			return errors.WithMessage(err, "products file is unreadable, fix it or set storage.ignore_corrupt")
		}
		zap.L().Warn("products file is corrupt, the catalog starts empty", zap.Error(err))
	}
	if err := a.settings.Check(); err != nil {
		zap.L().Warn("settings file is corrupt, defaults are used", zap.Error(err))
	}
	return nil
}
