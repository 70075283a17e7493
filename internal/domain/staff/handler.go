package staff

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	// Customers browse active staff and their hours when picking a slot.
	public.GET("/staff", h.ListActive)
	public.GET("/staff/:id/schedule", h.GetSchedule)

	api.GET("/staff", h.List)
	api.GET("/staff/:id", h.Get)
	api.POST("/staff", h.Create)
	api.PUT("/staff/:id", h.Update)
	api.DELETE("/staff/:id", h.Deactivate)
	api.POST("/staff/:id/reactivate", h.Reactivate)
	api.GET("/staff/:id/schedule", h.GetSchedule)
	api.PUT("/staff/:id/schedule", h.SetSchedule)
	api.PUT("/staff/:id/schedule/:day", h.SetScheduleDay)
	api.DELETE("/staff/:id/schedule/:day", h.ClearScheduleDay)
}

type createRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Role     string `json:"role" validate:"omitempty,oneof=owner admin manager staff"`
	Bio      string `json:"bio" validate:"max=2000"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	member, err := h.svc.Create(c.Request().Context(), CreateRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Bio:      req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	member, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

type updateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Role     *string `json:"role" validate:"omitempty,oneof=owner admin manager staff"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	member, err := h.svc.Update(c.Request().Context(), id, UpdateRequest{
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		Bio:      req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) Deactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Reactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Reactivate(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	activeOnly := c.QueryParam("active") == "true"
	members, total, err := h.svc.List(c.Request().Context(), activeOnly, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(members, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListActive(c echo.Context) error {
	pg := pagination.FromContext(c)
	members, total, err := h.svc.List(c.Request().Context(), true, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(members, total, pg.Limit, pg.Offset))
}

type scheduleDayRequest struct {
	StartTime timeofday.TimeOfDay `json:"start_time"`
	EndTime   timeofday.TimeOfDay `json:"end_time"`
	Available bool                `json:"is_available"`
}

type scheduleRequest struct {
	Days []struct {
		DayOfWeek int `json:"day_of_week" validate:"required,min=1,max=7"`
		scheduleDayRequest
	} `json:"days" validate:"required,dive"`
}

func (h *Handler) SetSchedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	days := make([]ScheduleDayInput, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, ScheduleDayInput{
			DayOfWeek: d.DayOfWeek,
			Start:     d.StartTime,
			End:       d.EndTime,
			Available: d.Available,
		})
	}
	entries, err := h.svc.SetWeeklySchedule(c.Request().Context(), id, days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) SetScheduleDay(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	day, err := parseDay(c)
	if err != nil {
		return err
	}
	var req scheduleDayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.svc.SetScheduleDay(c.Request().Context(), id, ScheduleDayInput{
		DayOfWeek: day,
		Start:     req.StartTime,
		End:       req.EndTime,
		Available: req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.Schedule(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ClearScheduleDay(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	day, err := parseDay(c)
	if err != nil {
		return err
	}
	if err := h.svc.ClearScheduleDay(c.Request().Context(), id, day); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func parseDay(c echo.Context) (int, error) {
	var day int
	if err := echo.PathParamsBinder(c).Int("day", &day).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid day")
	}
	return day, nil
}
