package app

import (
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/store"
	"github.com/talkincode/storefront/internal/telegram"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// CatalogProvider provides product catalog access
type CatalogProvider interface {
	Catalog() *catalog.Catalog
}

// SettingsProvider provides the notification settings store
type SettingsProvider interface {
	Settings() *store.DocumentStore[domain.Settings]
}

// DispatcherProvider provides order dispatching
type DispatcherProvider interface {
	Dispatcher() *telegram.Dispatcher
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	CatalogProvider
	SettingsProvider
	DispatcherProvider
}
