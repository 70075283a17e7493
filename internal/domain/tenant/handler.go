package tenant

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slotify/slotify/internal/platform/auth"
	"github.com/slotify/slotify/pkg/pagination"
	"github.com/slotify/slotify/pkg/timeofday"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api, public *echo.Group) {
	// Sign-up is the one tenant operation with no tenant yet.
	public.POST("/tenants", h.Provision)

	api.GET("/tenant", h.Current)
	api.PUT("/tenant/settings", h.UpdateSettings)
	api.DELETE("/tenant", h.Deactivate)
	api.GET("/tenants", h.List, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	tenants, total, err := h.svc.List(c.Request().Context(), pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tenants, total, pg.Limit, pg.Offset))
}

type provisionRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=500"`
	Timezone string `json:"timezone" validate:"max=64"`
}

func (h *Handler) Provision(c echo.Context) error {
	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.Provision(c.Request().Context(), ProvisionRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Timezone: req.Timezone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) Current(c echo.Context) error {
	t, err := h.svc.Current(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

type settingsRequest struct {
	Name                *string              `json:"name" validate:"omitempty,max=200"`
	Email               *string              `json:"email" validate:"omitempty,email"`
	Phone               *string              `json:"phone" validate:"omitempty,max=30"`
	Address             *string              `json:"address" validate:"omitempty,max=500"`
	Timezone            *string              `json:"timezone" validate:"omitempty,max=64"`
	SlotDurationMinutes *int                 `json:"slot_duration_minutes" validate:"omitempty,min=5,max=480"`
	AdvanceBookingDays  *int                 `json:"advance_booking_days" validate:"omitempty,min=1,max=365"`
	AutoConfirm         *bool                `json:"auto_confirm"`
	WorkingHoursStart   *timeofday.TimeOfDay `json:"working_hours_start"`
	WorkingHoursEnd     *timeofday.TimeOfDay `json:"working_hours_end"`
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.svc.UpdateSettings(c.Request().Context(), SettingsUpdate{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		Timezone:            req.Timezone,
		SlotDurationMinutes: req.SlotDurationMinutes,
		AdvanceBookingDays:  req.AdvanceBookingDays,
		AutoConfirm:         req.AutoConfirm,
		WorkingHoursStart:   req.WorkingHoursStart,
		WorkingHoursEnd:     req.WorkingHoursEnd,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Deactivate(c echo.Context) error {
	if err := h.svc.Deactivate(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
