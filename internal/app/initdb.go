package app

import (
	"errors"
	"time"

	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkFallbackCategory ensures the category that absorbs reassigned
// products always exists.
func (a *Application) checkFallbackCategory() {
	var cat domain.Category
	err := a.gormDB.Where("name = ?", domain.FallbackCategoryName).First(&cat).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.Category{
			ID:   common.UUIDint64(),
			Name: domain.FallbackCategoryName,
		}).Error; err != nil {
			zap.L().Error("failed to create fallback category", zap.Error(err))
		} else {
			zap.L().Info("initialized fallback category",
				zap.String("name", domain.FallbackCategoryName))
		}
	case err != nil:
		zap.L().Error("failed to query fallback category", zap.Error(err))
	}
}

// checkSettings initializes missing default settings
func (a *Application) checkSettings() {
	defaults := []domain.SysConfig{
		{Sort: 1, Type: "sales", Name: "RetentionYears", Value: "5", Remark: "Purge sales older than this many years"},
		{Sort: 2, Type: "sales", Name: "ListLimit", Value: "200", Remark: "Default row limit for sale listings"},
		{Sort: 3, Type: "stock", Name: "CriticalThreshold", Value: "10", Remark: "Stock level considered critical"},
		{Sort: 4, Type: "pos", Name: "MaxWorkers", Value: "16", Remark: "Worker pool size for store-touching operations"},
	}

	for _, def := range defaults {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", def.Type, def.Name).
			Count(&count)

		if count == 0 {
			def.ID = common.UUIDint64()
			if err := a.gormDB.Create(&def).Error; err != nil {
				zap.L().Error("failed to create default setting",
					zap.String("type", def.Type),
					zap.String("name", def.Name),
					zap.Error(err))
			} else {
				zap.L().Info("initialized setting",
					zap.String("key", def.Type+"."+def.Name),
					zap.String("default", def.Value))
			}
		}
	}
}

// checkMaintTasks initializes default scheduled maintenance tasks
func (a *Application) checkMaintTasks() {
	defaultTasks := []domain.MaintTask{
		{
			Name:     "Sales Retention Purge",
			TaskType: "sales_retention",
			Interval: 86400, // daily
			Status:   common.ENABLED,
			Remark:   "Deletes sales and their items past the retention horizon",
		},
		{
			Name:     "Critical Stock Check",
			TaskType: "critical_stock",
			Interval: 3600, // hourly
			Status:   common.ENABLED,
			Remark:   "Logs products whose stock fell under the critical threshold",
		},
	}

	for _, task := range defaultTasks {
		var count int64
		a.gormDB.Model(&domain.MaintTask{}).
			Where("task_type = ?", task.TaskType).
			Count(&count)

		if count == 0 {
			task.ID = common.UUIDint64()
			task.NextRunAt = time.Now().Add(time.Duration(task.Interval) * time.Second)
			if err := a.gormDB.Create(&task).Error; err != nil {
				zap.L().Error("failed to create default maintenance task",
					zap.String("name", task.Name),
					zap.Error(err))
			} else {
				zap.L().Info("initialized default maintenance task",
					zap.String("name", task.Name),
					zap.String("task_type", task.TaskType))
			}
		}
	}
}
