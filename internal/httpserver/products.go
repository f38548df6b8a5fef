package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	catalogsvc "storefront/internal/service/catalog"
)

// parseListQuery reads filter and paging parameters. Malformed numbers are
// rejected here; range checks belong to the catalog service.
func parseListQuery(c *gin.Context) (catalogsvc.ListInput, error) {
	in := catalogsvc.ListInput{
		Category: c.Query("category"),
		Query:    firstNonEmpty(c.Query("q"), c.Query("search")),
		SortBy:   c.Query("sortBy"),
		SortDir:  c.Query("sortDir"),
	}
	var err error
	if in.MinPrice, err = decimalQuery(c, "minPrice"); err != nil {
		return in, err
	}
	if in.MaxPrice, err = decimalQuery(c, "maxPrice"); err != nil {
		return in, err
	}
	if in.PageNumber, err = intQuery(c, "pageNumber"); err != nil {
		return in, err
	}
	if in.PageSize, err = intQuery(c, "pageSize"); err != nil {
		return in, err
	}
	return in, nil
}

func decimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidArgument, key)
	}
	return &d, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidArgument, key)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (h *api) listProducts(c *gin.Context) {
	in, err := parseListQuery(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	page, err := h.deps.Catalog.List(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"Message":      "OK",
		"Products":     page.Products,
		"TotalRecords": page.TotalRecords,
		"PageNumber":   page.PageNumber,
		"PageSize":     page.PageSize,
		"TotalPages":   page.TotalPages,
	})
}

func (h *api) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "OK", "Product": p})
}

func (h *api) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "OK", "Categories": cats})
}

func (h *api) createProduct(c *gin.Context) {
	var req catalogsvc.ProductInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.deps.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Message": "Product created successfully", "Product": p})
}

func (h *api) updateProduct(c *gin.Context) {
	var req catalogsvc.ProductInput
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	p, err := h.deps.Catalog.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Product updated successfully", "Product": p})
}

func (h *api) deleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Product deleted successfully"})
}

func (h *api) uploadProductImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, h.logger, fmt.Errorf("%w: file required", domain.ErrInvalidArgument))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, fmt.Errorf("%w: open upload: %v", domain.ErrInvalidArgument, err))
		return
	}
	defer f.Close()

	p, err := h.deps.Catalog.UploadImage(c.Request.Context(), c.Param("id"), f, fh.Filename)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Image uploaded successfully", "Product": p})
}

func (h *api) uploadFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, h.logger, fmt.Errorf("%w: file required", domain.ErrInvalidArgument))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, fmt.Errorf("%w: open upload: %v", domain.ErrInvalidArgument, err))
		return
	}
	defer f.Close()

	url, err := h.deps.Catalog.UploadFile(c.Request.Context(), f, fh.Filename)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "File uploaded successfully", "Url": url})
}
