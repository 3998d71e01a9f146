package handler

import (
	"github.com/bookkeeping-ledger/internal/domain/category"
	"github.com/gin-gonic/gin"
)

// CategoryHandler lists the suggested transaction categories
type CategoryHandler struct {
	catalogue *category.Catalogue
}

func NewCategoryHandler(catalogue *category.Catalogue) *CategoryHandler {
	return &CategoryHandler{catalogue: catalogue}
}

// List handles GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	RespondOK(c, CategoriesResponse{Categories: h.catalogue.Names()})
}
