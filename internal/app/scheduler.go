package app

import (
	"time"

	"github.com/stockapp/stockpos/internal/domain"
	"github.com/stockapp/stockpos/pkg/common"
	"go.uber.org/zap"
)

// runDueMaintTasks executes enabled tasks whose next run time has passed.
// The cron entry registered in initJob is the only caller, so a task can
// never be picked up twice while still running.
func (a *Application) runDueMaintTasks() {
	var tasks []domain.MaintTask
	a.gormDB.Where("status = ?", common.ENABLED).Find(&tasks)
	now := time.Now()
	for _, task := range tasks {
		if task.NextRunAt.IsZero() || now.After(task.NextRunAt) || now.Equal(task.NextRunAt) {
			a.runMaintTask(&task)
		}
	}
}

// RunMaintTaskNow triggers a maintenance task execution immediately by ID
func (a *Application) RunMaintTaskNow(id int64) error {
	var task domain.MaintTask
	if err := a.gormDB.First(&task, id).Error; err != nil {
		return err
	}
	a.runMaintTask(&task)
	return nil
}

func (a *Application) runMaintTask(task *domain.MaintTask) {
	var (
		message string
		err     error
	)
	switch task.TaskType {
	case "sales_retention":
		message, err = a.SchedSalesRetentionTask()
	case "critical_stock":
		message, err = a.SchedCriticalStockTask()
	default:
		zap.L().Warn("unsupported maintenance task type",
			zap.String("task_type", task.TaskType))
		return
	}

	result := "success"
	if err != nil {
		result = "failed"
		message = err.Error()
	}

	now := time.Now()
	a.gormDB.Model(&domain.MaintTask{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"last_run_at":  now,
		"next_run_at":  now.Add(time.Duration(task.Interval) * time.Second),
		"last_result":  result,
		"last_message": message,
	})
}
