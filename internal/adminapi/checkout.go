package adminapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stockapp/stockpos/internal/checkout"
)

type checkoutLinePayload struct {
	Barcode  string `json:"barcode" form:"barcode"`
	Quantity int    `json:"quantity" form:"quantity"`
}

type checkoutPayload struct {
	Terminal string                `json:"terminal" form:"terminal"`
	Lines    []checkoutLinePayload `json:"lines" form:"lines"`
}

func (s *Server) registerCheckoutRoutes() {
	s.echo.POST("/pos/checkout", s.commitCheckout)
}

// commitCheckout runs one checkout through the dispatcher so a terminal can
// only have one commit in flight; the handler blocks until the worker
// reports the outcome.
func (s *Server) commitCheckout(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout", err.Error())
	}
	terminal := strings.TrimSpace(payload.Terminal)
	if terminal == "" {
		terminal = "default"
	}
	if len(payload.Lines) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Cart is empty", nil)
	}

	barcodes := make([]string, 0, len(payload.Lines))
	for _, ln := range payload.Lines {
		if ln.Quantity <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Quantity must be positive", ln.Barcode)
		}
		barcodes = append(barcodes, ln.Barcode)
	}

	ctx := c.Request().Context()
	snapshots, err := s.productRepo.FindByBarcodes(ctx, barcodes)
	if err != nil {
		return failFor(c, err)
	}
	byBarcode := make(map[string]int, len(snapshots))
	for i, p := range snapshots {
		byBarcode[p.Barcode] = i
	}

	cart := checkout.NewCart()
	for _, ln := range payload.Lines {
		idx, found := byBarcode[ln.Barcode]
		if !found {
			return failFor(c, &checkout.ProductNotFoundError{Barcode: ln.Barcode})
		}
		if err := cart.AddOrMerge(snapshots[idx], ln.Quantity); err != nil {
			return failFor(c, err)
		}
	}

	lines, err := cart.FinalizeForCheckout()
	if err != nil {
		return failFor(c, err)
	}

	type result struct {
		saleID int64
		err    error
	}
	done := make(chan result, 1)
	// the commit runs to completion once submitted; a client disconnect
	// must not abort the open transaction
	commitCtx := context.WithoutCancel(ctx)
	submitErr := s.app.Dispatcher().Submit("checkout:"+terminal, func() {
		saleID, err := s.engine.Commit(commitCtx, lines)
		done <- result{saleID: saleID, err: err}
	})
	if submitErr != nil {
		return failFor(c, submitErr)
	}

	res := <-done
	if res.err != nil {
		return failFor(c, res.err)
	}
	return ok(c, map[string]interface{}{"sale_id": res.saleID})
}
