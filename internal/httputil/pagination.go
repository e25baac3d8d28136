package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination parses the page and limit query parameters.
// page defaults to 1, limit defaults to defaultLimit and cannot exceed 100.
func ParsePagination(c *gin.Context, defaultLimit int) (Page, error) {
	pageStr := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return Page{}, fmt.Errorf("invalid page parameter: must be a positive integer")
	}

	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 100 {
		return Page{}, fmt.Errorf("invalid limit parameter: must be between 1 and 100")
	}

	return Page{Page: page, Limit: limit}, nil
}
