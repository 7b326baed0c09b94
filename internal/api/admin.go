package api

import (
	"bytes"    // Export buffer
	"net/http" // HTTP status codes
	"time"     // Export file naming

	"storefront/internal/service" // Order and catalog services

	"github.com/gin-gonic/gin" // Gin web framework
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListAllOrdersHandler returns every order with its items and customer contact
func ListAllOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := orders.ListAllOrders(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

// OrderStatsHandler returns order counts per status and delivered revenue
func OrderStatsHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := orders.GetOrderStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// ExportProductsHandler streams the catalog as an xlsx workbook
func ExportProductsHandler(catalog *service.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer // Build the workbook before writing headers
		if err := catalog.ExportProducts(c.Request.Context(), &buf); err != nil {
			respondError(c, err)
			return
		}
		filename := "products-" + time.Now().UTC().Format("20060102") + ".xlsx"
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
