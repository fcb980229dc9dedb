package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stockapp/stockpos/internal/domain"
)

type categoryPayload struct {
	Name string `json:"name" form:"name"`
}

type categoryDeletePayload struct {
	FallbackID int64 `json:"fallback_id,string" form:"fallback_id"`
}

func (s *Server) registerCategoryRoutes() {
	s.echo.GET("/categories", s.listCategories)
	s.echo.POST("/categories", s.createCategory)
	s.echo.DELETE("/categories/:id", s.deleteCategory)
}

// listCategories serves from the cache; repository mutations invalidate it
// through the bus.
func (s *Server) listCategories(c echo.Context) error {
	rows, err := s.app.CategoryCache().All(c.Request().Context())
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, rows)
}

func (s *Server) createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	cat, err := s.categoryRepo.Create(c.Request().Context(), payload.Name)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	return ok(c, cat)
}

// deleteCategory reassigns the category's products to the fallback category
// before removing it. The fallback is resolved by name when the caller does
// not supply one.
func (s *Server) deleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	var payload categoryDeletePayload
	_ = c.Bind(&payload)

	ctx := c.Request().Context()
	fallbackID := payload.FallbackID
	if fallbackID == 0 {
		fallbackID, err = s.categoryRepo.FindIDByName(ctx, domain.FallbackCategoryName)
		if err != nil {
			return failFor(c, err)
		}
	}

	if err := s.categoryRepo.DeleteWithReassignment(ctx, id, fallbackID); err != nil {
		return failFor(c, err)
	}
	return ok(c, map[string]interface{}{"id": id, "fallback_id": fallbackID})
}
