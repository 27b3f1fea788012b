package server

import (
	"net/http"
	"strconv"

	"gold_go/internal/infra/storage"

	"github.com/gin-gonic/gin"
)

// ProductHandler serves the jewelry gallery.
type ProductHandler struct {
	store *storage.Storage
}

// NewProductHandler creates the product handler.
func NewProductHandler(store *storage.Storage) *ProductHandler {
	return &ProductHandler{store: store}
}

// List returns the active catalog items.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.store.ListActiveProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "خطا در دریافت محصولات",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// Get returns a single catalog item.
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "شناسه محصول نامعتبر است",
		})
		return
	}

	product, err := h.store.GetProduct(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "خطا در دریافت محصول",
		})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "محصول یافت نشد",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}
