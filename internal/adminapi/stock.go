package adminapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type stockPayload struct {
	ProductID int64 `json:"product_id,string" form:"product_id"`
	Delta     int   `json:"delta" form:"delta"`
	NewStock  int   `json:"new_stock" form:"new_stock"`
}

func (s *Server) registerStockRoutes() {
	s.echo.POST("/stock/increase", s.increaseStock)
	s.echo.POST("/stock/decrease", s.decreaseStock)
	s.echo.POST("/stock/set", s.setStock)
}

// runStockOp pushes one adjustment through the dispatcher so a product can
// only have one adjustment in flight, then blocks for the outcome. The
// adjustment runs to completion once submitted; a client disconnect must not
// abort it mid-statement.
func (s *Server) runStockOp(c echo.Context, productID int64, op func(ctx context.Context) error) error {
	opCtx := context.WithoutCancel(c.Request().Context())
	done := make(chan error, 1)
	submitErr := s.app.Dispatcher().Submit("stock:"+strconv.FormatInt(productID, 10), func() {
		done <- op(opCtx)
	})
	if submitErr != nil {
		return failFor(c, submitErr)
	}
	if err := <-done; err != nil {
		return failFor(c, err)
	}
	return ok(c, map[string]interface{}{"product_id": productID})
}

func (s *Server) increaseStock(c echo.Context) error {
	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock adjustment", err.Error())
	}
	return s.runStockOp(c, payload.ProductID, func(ctx context.Context) error {
		return s.guard.Increase(ctx, payload.ProductID, payload.Delta)
	})
}

func (s *Server) decreaseStock(c echo.Context) error {
	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock adjustment", err.Error())
	}
	return s.runStockOp(c, payload.ProductID, func(ctx context.Context) error {
		return s.guard.Decrease(ctx, payload.ProductID, payload.Delta)
	})
}

func (s *Server) setStock(c echo.Context) error {
	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock adjustment", err.Error())
	}
	if payload.NewStock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock target must not be negative", nil)
	}
	return s.runStockOp(c, payload.ProductID, func(ctx context.Context) error {
		return s.guard.SetExact(ctx, payload.ProductID, payload.NewStock)
	})
}
