package adminapi

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stockapp/stockpos/internal/app"
	"github.com/stockapp/stockpos/internal/catalog"
	"github.com/stockapp/stockpos/internal/checkout"
	"github.com/stockapp/stockpos/internal/reports"
	"github.com/stockapp/stockpos/internal/stock"
	"github.com/stockapp/stockpos/internal/worker"
	"github.com/stockapp/stockpos/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server exposes the checkout core and its catalog/report collaborators over
// HTTP. It produces no UI text; handlers translate core errors to status
// codes and let the caller render messages.
type Server struct {
	app          app.AppContext
	echo         *echo.Echo
	engine       *checkout.Engine
	guard        *stock.Guard
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	reportsRepo  *reports.Repository
}

func NewServer(appCtx app.AppContext) *Server {
	db := appCtx.DB()
	s := &Server{
		app:          appCtx,
		echo:         echo.New(),
		engine:       checkout.NewEngine(db),
		guard:        stock.NewGuard(db),
		productRepo:  catalog.NewGormProductRepository(db),
		categoryRepo: catalog.NewGormCategoryRepository(db, appCtx.Bus()),
		reportsRepo:  reports.NewRepository(db),
	}

	s.echo.HideBanner = true
	s.echo.JSONSerializer = jsonSerializer{}
	s.echo.Use(middleware.Recover())

	s.registerCheckoutRoutes()
	s.registerStockRoutes()
	s.registerProductRoutes()
	s.registerCategoryRoutes()
	s.registerReportRoutes()
	s.registerMaintRoutes()
	return s
}

// Echo returns the underlying router (used in tests).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	cfg := s.app.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.L().Info("admin api listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() {
	_ = s.echo.Close()
}

// jsonSerializer replaces echo's default JSON codec with jsoniter.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": "OK",
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":     "OK",
		"data":     rows,
		"total":    total,
		"page":     page,
		"per_page": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// parseRange reads from/to query params, defaulting to the current day.
func parseRange(c echo.Context) (from, to time.Time, err error) {
	now := time.Now()
	from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to = from.AddDate(0, 0, 1)

	if v := c.QueryParam("from"); v != "" {
		from, err = dateparse.ParseAny(v)
		if err != nil {
			return from, to, err
		}
	}
	if v := c.QueryParam("to"); v != "" {
		to, err = dateparse.ParseAny(v)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

// failFor maps core errors to status codes.
func failFor(c echo.Context, err error) error {
	var (
		ise      *stock.InsufficientStockError
		notFound *checkout.ProductNotFoundError
	)
	switch {
	case common.IsValidation(err):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case stderrors.As(err, &notFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", err.Error(), notFound.Barcode)
	case stderrors.As(err, &ise):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), ise.ProductID)
	case stderrors.Is(err, stock.ErrProductNotFound),
		stderrors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "record not found", nil)
	case stderrors.Is(err, catalog.ErrProductHasSales):
		return fail(c, http.StatusConflict, "PRODUCT_HAS_SALES", err.Error(), nil)
	case stderrors.Is(err, catalog.ErrFallbackCategoryProtected):
		return fail(c, http.StatusBadRequest, "FALLBACK_PROTECTED", err.Error(), nil)
	case stderrors.Is(err, worker.ErrBusy):
		return fail(c, http.StatusConflict, "BUSY", "operation already in flight", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "storage failure", err.Error())
	}
}
