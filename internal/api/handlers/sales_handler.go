package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/gin-gonic/gin"
)

type SalesService interface {
	CreateSale(ctx context.Context, form domain.CreateSaleForm) (*domain.Sale, error)
	ListSales(ctx context.Context, days int, query string) (*domain.SalesPage, error)
}

type SalesHandler struct {
	service SalesService
}

func NewSalesHandler(service SalesService) *SalesHandler {
	return &SalesHandler{service: service}
}

// ListSales accepts ?days= (service default when absent or invalid) and ?search=.
func (h *SalesHandler) ListSales(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	page, err := h.service.ListSales(c.Request.Context(), days, c.Query("search"))
	if err != nil {
		respondError(c, err, "failed to fetch sales")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SalesHandler) CreateSale(c *gin.Context) {
	var form domain.CreateSaleForm
	if !bindJSON(c, &form) {
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), form)
	if err != nil {
		respondError(c, err, "failed to record sale")
		return
	}
	c.JSON(http.StatusCreated, sale)
}
