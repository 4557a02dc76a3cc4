package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"comandero/internal/catalog"
	"comandero/internal/models"
)

// catalogError answers a catalog rejection: unknown products are 404,
// anything else the caller sent is a 400.
func catalogError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// Catalog handlers

func (f *FloorAPI) SearchProducts(c *gin.Context) {
	matches := f.catalog.Search(c.Query("query"))
	if matches == nil {
		matches = []models.Product{}
	}
	c.JSON(http.StatusOK, matches)
}

func (f *FloorAPI) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, f.catalog.Categories())
}

func (f *FloorAPI) GetProductsByCategory(c *gin.Context) {
	products := f.catalog.ListByCategory(c.Param("category"))
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (f *FloorAPI) AddProduct(c *gin.Context) {
	var req struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := f.catalog.Add(models.Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.metrics.RecordOperation("add_product")
	c.JSON(http.StatusCreated, product)
}

func (f *FloorAPI) UpdateProductPrice(c *gin.Context) {
	var req struct {
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := f.catalog.UpdatePrice(c.Param("product"), req.Price); err != nil {
		catalogError(c, err)
		return
	}
	f.metrics.RecordOperation("update_price")
	c.JSON(http.StatusOK, gin.H{"message": "Price updated"})
}

func (f *FloorAPI) SetProductAvailability(c *gin.Context) {
	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available field is required"})
		return
	}

	if err := f.catalog.SetAvailability(c.Param("product"), *req.Available); err != nil {
		catalogError(c, err)
		return
	}
	f.metrics.RecordOperation("set_availability")
	c.JSON(http.StatusOK, gin.H{"message": "Availability updated"})
}
