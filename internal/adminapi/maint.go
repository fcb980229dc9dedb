package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/stockapp/stockpos/internal/domain"
)

func (s *Server) registerMaintRoutes() {
	s.echo.GET("/maint/tasks", s.listMaintTasks)
	s.echo.POST("/maint/tasks/:id/run", s.runMaintTask)
}

func (s *Server) listMaintTasks(c echo.Context) error {
	var tasks []domain.MaintTask
	if err := s.app.DB().WithContext(c.Request().Context()).Order("name ASC").Find(&tasks).Error; err != nil {
		return failFor(c, err)
	}
	return ok(c, tasks)
}

func (s *Server) runMaintTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid task ID", nil)
	}
	if err := s.app.RunMaintTaskNow(id); err != nil {
		return failFor(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
