package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettingsManager reads runtime-tunable settings from sys_config, caching
// values until a Set replaces them.
type SettingsManager struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[string]string
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: make(map[string]string)}
}

func (m *SettingsManager) GetString(category, name string) string {
	key := category + "." + name

	m.mu.RLock()
	if v, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return v
	}
	m.mu.RUnlock()

	var cfg domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&cfg).Error
	if err != nil {
		zap.S().Debugf("settings lookup miss %s: %v", key, err)
		return ""
	}

	m.mu.Lock()
	m.cache[key] = cfg.Value
	m.mu.Unlock()
	return cfg.Value
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// Set upserts a setting value and refreshes the cache.
func (m *SettingsManager) Set(category, name, value string) error {
	var cfg domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&cfg).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		err = m.db.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}).Error
	case err == nil:
		err = m.db.Model(&domain.SysConfig{}).
			Where("id = ?", cfg.ID).
			Updates(map[string]interface{}{
				"value":      value,
				"updated_at": time.Now(),
			}).Error
	}
	if err != nil {
		return common.WrapPersistence("settings.set", err)
	}

	m.mu.Lock()
	m.cache[category+"."+name] = value
	m.mu.Unlock()
	return nil
}
