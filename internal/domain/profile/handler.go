package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/me", h.GetMe)
}

func (h *Handler) GetMe(c echo.Context) error {
	id, err := auth.RequireIdentity(c)
	if err != nil {
		return err
	}
	me, err := h.svc.Me(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": me})
}
