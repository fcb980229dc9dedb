package app

import (
	"context"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stockapp/stockpos/internal/catalog"
	"github.com/stockapp/stockpos/internal/reports"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 1m", func() {
		a.runDueMaintTasks()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSalesRetentionTask purges sales past the retention horizon. Failures
// are logged and contained; the interactive session never sees them.
func (a *Application) SchedSalesRetentionTask() (string, error) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	years := int(a.settings.GetInt64("sales", "RetentionYears"))
	if years == 0 {
		years = 5
	}

	repo := reports.NewRepository(a.gormDB)
	purged, err := repo.PurgeSalesOlderThan(context.Background(), years)
	if err != nil {
		zap.L().Error("sales retention purge failed", zap.Error(err))
		return "", err
	}
	zap.L().Info("sales retention purge completed",
		zap.Int("years", years),
		zap.Int64("purged", purged))
	return "purged " + strconv.FormatInt(purged, 10), nil
}

// SchedCriticalStockTask logs products under the critical stock threshold
func (a *Application) SchedCriticalStockTask() (string, error) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	threshold := int(a.settings.GetInt64("stock", "CriticalThreshold"))
	if threshold == 0 {
		threshold = 10
	}

	repo := catalog.NewGormProductRepository(a.gormDB)
	count, err := repo.CountCritical(context.Background(), threshold)
	if err != nil {
		zap.L().Error("critical stock check failed", zap.Error(err))
		return "", err
	}
	if count > 0 {
		zap.L().Warn("products under critical stock threshold",
			zap.Int("threshold", threshold),
			zap.Int64("count", count))
	}
	return strconv.FormatInt(count, 10) + " critical products", nil
}
