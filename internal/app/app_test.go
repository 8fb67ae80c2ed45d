package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.System.Workdir = t.TempDir()
	return &cfg
}

func TestInitCreatesDirsAndComponents(t *testing.T) {
	cfg := testConfig(t)
	a := NewApplication(cfg)
	require.NoError(t, a.Init())
	defer a.Release()

	for _, dir := range []string{cfg.GetDataDir(), cfg.GetUploadDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.NotNil(t, a.Catalog())
	assert.NotNil(t, a.Dispatcher())
	assert.Equal(t, domain.DefaultSettings(), a.Settings().Load())
	assert.Equal(t, filepath.Join(cfg.System.Workdir, "data", "products.json"), cfg.GetProductsFile())
}

func TestInitRejectsBadSnowflakeNode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.IDScheme = "snowflake"
	cfg.Storage.NodeID = 4096
	assert.Error(t, NewApplication(cfg).Init())
}

func TestCatalogChangesAreAudited(t *testing.T) {
	a := NewApplication(testConfig(t))
	require.NoError(t, a.Init())
	defer a.Release()

	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	p, err := a.Catalog().Create(domain.ProductInput{Name: "Chair", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)
	name := "Stool"
	_, err = a.Catalog().Update(p.ID, domain.ProductPatch{Name: &name})
	require.NoError(t, err)
	require.NoError(t, a.Catalog().Delete(p.ID))

	audit := logs.FilterField(zap.String("namespace", "audit"))
	require.Equal(t, 3, audit.Len())
	entries := audit.All()
	assert.Equal(t, "product created", entries[0].Message)
	assert.Equal(t, "product updated", entries[1].Message)
	assert.Equal(t, "product deleted", entries[2].Message)
	assert.Equal(t, p.ID, entries[2].ContextMap()["id"])
}

func writeLegacyProducts(t *testing.T, cfg *config.AppConfig) []byte {
	t.Helper()
	// valid JSON, but one price is not a number
	legacy := []byte(`[{"id":1,"name":"Kept","price":100},{"id":3,"name":"Odd","price":"12₽"}]`)
	require.NoError(t, os.MkdirAll(cfg.GetDataDir(), 0o755))
	require.NoError(t, os.WriteFile(cfg.GetProductsFile(), legacy, 0o644))
	return legacy
}

func TestInitRefusesUnreadableProducts(t *testing.T) {
	cfg := testConfig(t)
	legacy := writeLegacyProducts(t, cfg)

	err := NewApplication(cfg).Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.ignore_corrupt")

	data, err := os.ReadFile(cfg.GetProductsFile())
	require.NoError(t, err)
	assert.Equal(t, legacy, data, "file is left as it was")
}

func TestInitIgnoreCorruptStartsEmpty(t *testing.T) {
	cfg := testConfig(t)
	writeLegacyProducts(t, cfg)
	cfg.Storage.IgnoreCorrupt = true

	a := NewApplication(cfg)
	require.NoError(t, a.Init())
	defer a.Release()
	assert.Empty(t, a.Catalog().List())
}

func TestInitCreatesLogDirWhenFileLogging(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logger.FileEnable = true

	a := NewApplication(cfg)
	require.NoError(t, a.Init())
	defer a.Release()

	info, err := os.Stat(cfg.GetLogDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(cfg.GetLogDir(), "storefront.log"), cfg.GetLogFile())
}
