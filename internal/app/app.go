package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/store"
	"github.com/talkincode/storefront/internal/telegram"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Application struct {
	appConfig  *config.AppConfig
	products   *store.RecordStore[domain.Product]
	settings   *store.DocumentStore[domain.Settings]
	catalog    *catalog.Catalog
	dispatcher *telegram.Dispatcher
	bus        EventBus.Bus
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider     = (*Application)(nil)
	_ CatalogProvider    = (*Application)(nil)
	_ SettingsProvider   = (*Application)(nil)
	_ DispatcherProvider = (*Application)(nil)
	_ AppContext         = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Catalog() *catalog.Catalog {
	return a.catalog
}

func (a *Application) Settings() *store.DocumentStore[domain.Settings] {
	return a.settings
}

func (a *Application) Dispatcher() *telegram.Dispatcher {
	return a.dispatcher
}

// Init sets up logging, the data directories and every component. It must be
// called once before the application is served.
func (a *Application) Init() error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if err := a.checkDirs(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logger, cfg.GetLogFile())
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	zap.ReplaceGlobals(logger)

	ids, err := catalog.NewIDGenerator(cfg.Storage.IDScheme, cfg.Storage.NodeID)
	if err != nil {
		return errors.WithMessage(err, "init id generator")
	}

	a.bus = EventBus.New()
	a.products = store.NewRecordStore[domain.Product](cfg.GetProductsFile())
	a.settings = store.NewDocumentStore(cfg.GetSettingsFile(), domain.DefaultSettings)
	a.catalog = catalog.New(a.products,
		catalog.WithIDGenerator(ids),
		catalog.WithEventBus(a.bus))
	a.dispatcher = telegram.NewDispatcher(a.settings, cfg.Telegram)

	if err := a.subscribeAudit(); err != nil {
		return err
	}
	if err := a.checkStores(); err != nil {
		return err
	}

	zap.L().Info("application initialized",
		zap.String("workdir", cfg.System.Workdir),
		zap.String("products", a.products.Path()),
		zap.String("settings", a.settings.Path()),
		zap.String("id_scheme", cfg.Storage.IDScheme))
	return nil
}

func newLogger(cfg config.LogConfig, filename string) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable {
		return zapConfig.Build(zap.AddCaller())
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// Release releases application resources
func (a *Application) Release() {
	a.unsubscribeAudit()
	_ = zap.L().Sync()
}
