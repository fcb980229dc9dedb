package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stockapp/stockpos/internal/domain"
)

type productPayload struct {
	Name       string          `json:"name" validate:"required,min=1,max=150"`
	Barcode    string          `json:"barcode" validate:"required,min=1,max=100"`
	CategoryID int64           `json:"category_id,string"`
	Stock      int             `json:"stock"`
	Price      decimal.Decimal `json:"price"`
}

// registerProductRoutes registers product CRUD and lookup endpoints
func (s *Server) registerProductRoutes() {
	s.echo.GET("/products", s.listProducts)
	s.echo.GET("/products/critical", s.listCriticalProducts)
	s.echo.GET("/products/barcode/:barcode", s.getProductByBarcode)
	s.echo.GET("/products/:id", s.getProduct)
	s.echo.POST("/products", s.createProduct)
	s.echo.PUT("/products/:id", s.updateProduct)
	s.echo.DELETE("/products/:id", s.deleteProduct)
}

func (s *Server) listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	ctx := c.Request().Context()

	// free-text lookup goes through the barcode-first search path
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		rows, err := s.productRepo.Search(ctx, q, pageSize)
		if err != nil {
			return failFor(c, err)
		}
		return ok(c, rows)
	}

	rows, total, err := s.productRepo.List(ctx, page, pageSize)
	if err != nil {
		return failFor(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func (s *Server) listCriticalProducts(c echo.Context) error {
	threshold := int(s.app.GetSettingsInt64Value("stock", "CriticalThreshold"))
	if threshold == 0 {
		threshold = 10
	}
	rows, err := s.productRepo.Critical(c.Request().Context(), threshold)
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, rows)
}

func (s *Server) getProductByBarcode(c echo.Context) error {
	p, err := s.productRepo.FindByBarcode(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return failFor(c, err)
	}
	return ok(c, p)
}

func (s *Server) getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := s.app.DB().WithContext(c.Request().Context()).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func (s *Server) createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Barcode = strings.TrimSpace(payload.Barcode)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Barcode == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Barcode is required", nil)
	}
	if payload.Stock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must be >= 0", nil)
	}
	if payload.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}

	p := domain.Product{
		Name:       payload.Name,
		Barcode:    payload.Barcode,
		CategoryId: payload.CategoryID,
		Stock:      payload.Stock,
		Price:      payload.Price,
	}
	if err := s.productRepo.Create(c.Request().Context(), &p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

// updateProduct edits basic info only; stock moves exclusively through the
// stock endpoints.
func (s *Server) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Price.IsNegative() {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}

	if err := s.productRepo.UpdateBasics(c.Request().Context(), id, payload.Name, payload.Price, payload.CategoryID); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func (s *Server) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := s.productRepo.Delete(c.Request().Context(), id); err != nil {
		return failFor(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}
