package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blogforge/content-api/internal/api/middleware"
	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/gateway"
)

type DataHandler struct {
	gw *gateway.Gateway
}

func NewDataHandler(gw *gateway.Gateway) *DataHandler {
	return &DataHandler{gw: gw}
}

// Combined fans out to both downstream services and returns the aggregate.
// Downstream failures degrade the payload; the response itself is always 200.
func (h *DataHandler) Combined(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	result := h.gw.GetCombinedData(c.Request().Context(), c.Param("id"), id.Token)
	return c.JSON(http.StatusOK, result)
}
