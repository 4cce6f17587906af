package handlers

import (
	"context"
	"net/http"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardService interface {
	GetDashboard(ctx context.Context) (*domain.DashboardView, error)
}

type WarrantyService interface {
	ListWarranties(ctx context.Context, filter service.WarrantyFilter, query string) (*domain.WarrantiesPage, error)
}

type DashboardHandler struct {
	dashboard  DashboardService
	warranties WarrantyService
}

func NewDashboardHandler(dashboard DashboardService, warranties WarrantyService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, warranties: warranties}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	view, err := h.dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch dashboard")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListWarranties accepts ?status=all|active|expired|expiring and ?search=.
func (h *DashboardHandler) ListWarranties(c *gin.Context) {
	filter := service.ParseWarrantyFilter(c.Query("status"))

	page, err := h.warranties.ListWarranties(c.Request.Context(), filter, c.Query("search"))
	if err != nil {
		respondError(c, err, "failed to fetch warranties")
		return
	}
	c.JSON(http.StatusOK, page)
}
