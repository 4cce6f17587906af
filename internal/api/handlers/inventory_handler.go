package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/records"
	"github.com/andresuchdata/devicehub/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryService interface {
	AddDevice(ctx context.Context, form domain.AddDeviceForm) (*domain.Device, error)
	AddGadget(ctx context.Context, form domain.AddGadgetForm) (*domain.Gadget, error)
	ListInventory(ctx context.Context, q service.InventoryQuery) ([]domain.InventoryItem, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
}

type InventoryHandler struct {
	service InventoryService
}

func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) ListInventory(c *gin.Context) {
	query := service.InventoryQuery{
		Search:    c.Query("search"),
		SortBy:    strings.ToLower(strings.TrimSpace(c.Query("sort"))),
		Direction: records.ParseDirection(c.Query("dir")),
	}

	items, err := h.service.ListInventory(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "failed to fetch inventory")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *InventoryHandler) AddDevice(c *gin.Context) {
	var form domain.AddDeviceForm
	if !bindJSON(c, &form) {
		return
	}

	device, err := h.service.AddDevice(c.Request.Context(), form)
	if err != nil {
		respondError(c, err, "failed to add device")
		return
	}
	c.JSON(http.StatusCreated, device)
}

func (h *InventoryHandler) AddGadget(c *gin.Context) {
	var form domain.AddGadgetForm
	if !bindJSON(c, &form) {
		return
	}

	gadget, err := h.service.AddGadget(c.Request.Context(), form)
	if err != nil {
		respondError(c, err, "failed to add gadget")
		return
	}
	c.JSON(http.StatusCreated, gadget)
}

func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.service.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch suppliers")
		return
	}
	c.JSON(http.StatusOK, suppliers)
}
