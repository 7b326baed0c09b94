package service

import (
	"context" // Context for storage operations
	"io"      // Output stream

	"storefront/internal/domain" // Importing domain models
	"storefront/internal/store"  // Record store

	"github.com/tealeg/xlsx" // Excel workbook writer
)

// exportHeaders is the header row of the catalog export
var exportHeaders = []string{"ID", "Title", "Description", "Price", "Stock", "CategoryID", "Category", "ImageURL", "CreatedAt"}

// ExportProducts writes the whole catalog as an .xlsx workbook to w
func (c *CatalogService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := store.SelectAll[domain.Product](ctx, c.store, "title")
	if err != nil {
		return err
	}
	categories, err := store.SelectAll[domain.Category](ctx, c.store)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(categories)) // Category id -> name
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetString(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Title)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.Stock)
		categoryID, categoryName := "", ""
		if p.CategoryID != nil {
			categoryID = *p.CategoryID
			categoryName = names[categoryID]
		}
		row.AddCell().SetString(categoryID)
		row.AddCell().SetString(categoryName)
		row.AddCell().SetString(p.ImageURL)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return file.Write(w)
}
