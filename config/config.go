package config

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STOREFRONT_"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // prefix of urls returned by the upload endpoint
}

// StorageConfig file locations, relative paths resolve against the workdir
type StorageConfig struct {
	ProductsFile  string `yaml:"products_file"`
	SettingsFile  string `yaml:"settings_file"`
	UploadDir     string `yaml:"upload_dir"`
	IDScheme      string `yaml:"id_scheme"` // millis or snowflake
	NodeID        int64  `yaml:"node_id"`   // snowflake node, 0-1023
	IgnoreCorrupt bool   `yaml:"ignore_corrupt"`
}

type UploadConfig struct {
	MaxSize string `yaml:"max_size"`
}

type TelegramConfig struct {
	ApiBase  string        `yaml:"api_base"`
	Timeout  time.Duration `yaml:"timeout"` // zero means no client timeout
	Currency string        `yaml:"currency"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Storage  StorageConfig  `yaml:"storage"`
	Upload   UploadConfig   `yaml:"upload"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logger   LogConfig      `yaml:"logger"`
}

// GetDataDir returns the directory holding the json stores
func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// GetLogFile is logger.filename, or storefront.log under the log dir when unset
func (c *AppConfig) GetLogFile() string {
	if c.Logger.Filename != "" {
		return c.Logger.Filename
	}
	return path.Join(c.GetLogDir(), "storefront.log")
}

func (c *AppConfig) GetProductsFile() string {
	return c.resolve(c.Storage.ProductsFile, c.GetDataDir())
}

func (c *AppConfig) GetSettingsFile() string {
	return c.resolve(c.Storage.SettingsFile, c.GetDataDir())
}

func (c *AppConfig) GetUploadDir() string {
	return c.resolve(c.Storage.UploadDir, c.System.Workdir)
}

// GetUploadMaxSize parses upload.max_size ("10MB", "512KB"), falling back to 10MB.
func (c *AppConfig) GetUploadMaxSize() int64 {
	n, err := bytes.Parse(c.Upload.MaxSize)
	if err != nil || n <= 0 {
		return 10 * bytes.MB
	}
	return n
}

// GetPublicURL is the base of absolute upload urls, without a trailing slash.
func (c *AppConfig) GetPublicURL() string {
	if c.Web.PublicURL != "" {
		return strings.TrimRight(c.Web.PublicURL, "/")
	}
	host := c.Web.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + host + ":" + cast.ToString(c.Web.Port)
}

func (c *AppConfig) resolve(p, base string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Storefront",
		Location: "Europe/Moscow",
		Workdir:  "/var/storefront",
		Debug:    false,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 5000,
	},
	Storage: StorageConfig{
		ProductsFile: "products.json",
		SettingsFile: "settings.json",
		UploadDir:    "uploads",
		IDScheme:     "millis",
		NodeID:       1,
	},
	Upload: UploadConfig{
		MaxSize: "10MB",
	},
	Telegram: TelegramConfig{
		ApiBase:  "https://api.telegram.org",
		Currency: "₽",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "", // empty means <workdir>/logs/storefront.log
	},
}

// LoadConfig builds the configuration from defaults, an optional yaml file and
// STOREFRONT_* environment variables, in that order of precedence.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile == "" {
		cfile = "storefront.yml"
	}
	data, err := os.ReadFile(cfile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "read config %s", cfile)
	}

	setEnvValue("SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("WEB_PORT", &cfg.Web.Port)
	setEnvValue("WEB_PUBLIC_URL", &cfg.Web.PublicURL)

	setEnvValue("STORAGE_PRODUCTS_FILE", &cfg.Storage.ProductsFile)
	setEnvValue("STORAGE_SETTINGS_FILE", &cfg.Storage.SettingsFile)
	setEnvValue("STORAGE_UPLOAD_DIR", &cfg.Storage.UploadDir)
	setEnvValue("STORAGE_ID_SCHEME", &cfg.Storage.IDScheme)
	setEnvInt64Value("STORAGE_NODE_ID", &cfg.Storage.NodeID)
	setEnvBoolValue("STORAGE_IGNORE_CORRUPT", &cfg.Storage.IgnoreCorrupt)

	setEnvValue("UPLOAD_MAX_SIZE", &cfg.Upload.MaxSize)

	setEnvValue("TELEGRAM_API_BASE", &cfg.Telegram.ApiBase)
	setEnvDurationValue("TELEGRAM_TIMEOUT", &cfg.Telegram.Timeout)
	setEnvValue("TELEGRAM_CURRENCY", &cfg.Telegram.Currency)

	setEnvValue("LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("LOGGER_FILENAME", &cfg.Logger.Filename)

	switch cfg.Storage.IDScheme {
	case "millis", "snowflake":
	default:
		return nil, errors.Errorf("storage.id_scheme must be millis or snowflake, got %q", cfg.Storage.IDScheme)
	}
	return &cfg, nil
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			*val = n
		}
	}
}

func setEnvInt64Value(name string, val *int64) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if n, err := cast.ToInt64E(v); err == nil {
			*val = n
		}
	}
}

func setEnvDurationValue(name string, val *time.Duration) {
	if v := os.Getenv(envPrefix + name); v != "" {
		if d, err := cast.ToDurationE(v); err == nil {
			*val = d
		}
	}
}
