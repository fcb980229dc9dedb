package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerReportRoutes() {
	s.echo.GET("/reports/dashboard", s.reportDashboard)
	s.echo.GET("/reports/revenue", s.reportRevenue)
	s.echo.GET("/reports/top-products", s.reportTopProducts)
	s.echo.GET("/reports/category-summary", s.reportCategorySummary)
	s.echo.GET("/reports/daily-revenue", s.reportDailyRevenue)
	s.echo.GET("/reports/stats", s.reportStats)
	s.echo.GET("/sales", s.listSales)
	s.echo.GET("/sales/:id/receipt", s.getReceipt)
	s.echo.GET("/sales/export.csv", s.exportSalesCSV)
	s.echo.GET("/sales/export.xlsx", s.exportSalesXLSX)
}

// reportDashboard returns the store-wide overview figures: total products,
// products under the critical threshold and items sold this month.
func (s *Server) reportDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := s.productRepo.CountAll(ctx)
	if err != nil {
		return failFor(c, err)
	}

	threshold := int(s.app.GetSettingsInt64Value("stock", "CriticalThreshold"))
	if threshold == 0 {
		threshold = 10
	}
	critical, err := s.productRepo.CountCritical(ctx, threshold)
	if err != nil {
		return failFor(c, err)
	}

	monthlyItems, err := s.reportsRepo.MonthlyItemCount(ctx)
	if err != nil {
		return failFor(c, err)
	}

	return ok(c, map[string]interface{}{
		"product_count":      products,
		"critical_count":     critical,
		"monthly_item_count": monthlyItems,
	})
}

func (s *Server) reportRevenue(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	revenue, err := s.reportsRepo.Revenue(c.Request().Context(), from, to)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, map[string]interface{}{"from": from, "to": to, "revenue": revenue})
}

func (s *Server) reportTopProducts(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	rows, err := s.reportsRepo.TopProducts(c.Request().Context(), from, to)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, rows)
}

func (s *Server) reportCategorySummary(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	rows, err := s.reportsRepo.CategorySummary(c.Request().Context(), from, to)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, rows)
}

func (s *Server) reportDailyRevenue(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	rows, err := s.reportsRepo.DailyRevenue(c.Request().Context(), from, to)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, rows)
}

func (s *Server) reportStats(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	st, err := s.reportsRepo.Stats(c.Request().Context(), from, to)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, st)
}

func (s *Server) listSales(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	limit := int(s.app.GetSettingsInt64Value("sales", "ListLimit"))
	rows, err := s.reportsRepo.Sales(c.Request().Context(), from, to, limit)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, rows)
}

func (s *Server) getReceipt(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sale ID", nil)
	}
	receipt, err := s.reportsRepo.GetReceipt(c.Request().Context(), id)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, receipt)
}

func (s *Server) exportSalesCSV(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	limit := int(s.app.GetSettingsInt64Value("sales", "ListLimit"))

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return s.reportsRepo.ExportSalesCSV(c.Request().Context(), c.Response(), from, to, limit)
}

func (s *Server) exportSalesXLSX(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", "Unable to parse date range", err.Error())
	}
	limit := int(s.app.GetSettingsInt64Value("sales", "ListLimit"))

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return s.reportsRepo.ExportSalesXLSX(c.Request().Context(), c.Response(), from, to, limit)
}
