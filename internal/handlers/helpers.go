package handlers

import (
	"strconv"

	"commercehub/internal/common"

	"github.com/labstack/echo/v4"
)

// parsePagination reads limit/offset query params and clamps them to
// the shared bounds.
func parsePagination(c echo.Context) (int, int, error) {
	limit := 50
	offset := 0

	if limitParam := c.QueryParam("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			return 0, 0, err
		}
		limit = parsed
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		parsed, err := strconv.Atoi(offsetParam)
		if err != nil {
			return 0, 0, err
		}
		offset = parsed
	}

	return common.ValidatePaginationParams(limit, offset)
}
