package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/service"
	"github.com/gin-gonic/gin"
)

type LoanService interface {
	CreateLoan(ctx context.Context, form domain.CreateLoanForm) (*domain.Loan, error)
	ReturnLoan(ctx context.Context, id string) (*domain.Loan, error)
	SellLoan(ctx context.Context, id string, form domain.SellLoanForm) (*domain.Sale, error)
	ListLoans(ctx context.Context, q service.LoanQuery) (*domain.LoansPage, error)
}

type LoanHandler struct {
	service LoanService
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// ListLoans accepts ?status=active|returned|sold|all and ?search=.
func (h *LoanHandler) ListLoans(c *gin.Context) {
	query := service.LoanQuery{Search: c.Query("search")}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := domain.ParseLoanStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status", "details": "expected one of active, returned, sold, all"})
			return
		}
		query.Status = status
	}

	page, err := h.service.ListLoans(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "failed to fetch loans")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var form domain.CreateLoanForm
	if !bindJSON(c, &form) {
		return
	}

	loan, err := h.service.CreateLoan(c.Request.Context(), form)
	if err != nil {
		respondError(c, err, "failed to create loan")
		return
	}
	c.JSON(http.StatusCreated, loan)
}

func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	loan, err := h.service.ReturnLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to return loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) SellLoan(c *gin.Context) {
	var form domain.SellLoanForm
	if !bindJSON(c, &form) {
		return
	}

	sale, err := h.service.SellLoan(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		respondError(c, err, "failed to sell loan")
		return
	}
	c.JSON(http.StatusCreated, sale)
}
