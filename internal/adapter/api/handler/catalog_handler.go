package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type CatalogHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

func (h *CatalogHandler) GetServicesByCategory(c echo.Context) error {
	services, err := h.catalogUseCase.ListByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, services)
}
