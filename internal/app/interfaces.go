package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"github.com/stockapp/stockpos/config"
	"github.com/stockapp/stockpos/internal/catalog"
	"github.com/stockapp/stockpos/internal/worker"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// BusProvider provides event bus access
type BusProvider interface {
	Bus() EventBus.Bus
}

// DispatcherProvider provides worker dispatch capability
type DispatcherProvider interface {
	Dispatcher() *worker.Dispatcher
}

// CategoryCacheProvider provides category cache access
type CategoryCacheProvider interface {
	CategoryCache() *catalog.CategoryCache
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	BusProvider
	DispatcherProvider
	CategoryCacheProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// RunMaintTaskNow triggers a maintenance task execution immediately by ID
	RunMaintTaskNow(id int64) error
}
