package booking

import (
	"context"
	"net/http"
	"time"

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

// RegisterRoutes mounts the booking surface. public carries the
// unauthenticated customer-facing endpoints; api is behind the JWT
// middleware. Role checks beyond authentication live in the service.
func (h *Handler) RegisterRoutes(api, public *echo.Group) {
	public.GET("/availability", h.Availability)
	public.GET("/availability/check", h.CheckSlot)
	public.POST("/appointments", h.Create)
	public.GET("/appointments/by-phone", h.ByPhone)
	public.GET("/appointments/upcoming", h.UpcomingByEmail)
	public.POST("/appointments/:id/cancel", h.Cancel)

	api.GET("/availability", h.Availability)
	api.GET("/appointments", h.List)
	api.GET("/appointments/today", h.Today)
	api.GET("/appointments/upcoming", h.Upcoming)
	api.GET("/appointments/date/:date", h.ByDate)
	api.GET("/appointments/:id", h.Get)
	api.POST("/appointments", h.Create)
	api.PUT("/appointments/:id", h.Update)
	api.POST("/appointments/:id/reschedule", h.Reschedule)
	api.POST("/appointments/:id/confirm", h.Confirm)
	api.POST("/appointments/:id/complete", h.Complete)
	api.POST("/appointments/:id/cancel", h.Cancel)
	api.POST("/appointments/:id/no-show", h.MarkNoShow)
	api.GET("/staff/:staffId/appointments", h.ByStaffDate)
	api.GET("/calendar", h.CalendarView)
	api.GET("/statistics", h.StatisticsView)
}

type createRequest struct {
	StaffID       uuid.UUID           `json:"staff_id" validate:"required"`
	ServiceID     uuid.UUID           `json:"service_id" validate:"required"`
	CustomerName  string              `json:"customer_name" validate:"required,max=200"`
	CustomerPhone string              `json:"customer_phone" validate:"required,max=30"`
	CustomerEmail string              `json:"customer_email" validate:"omitempty,email"`
	Date          string              `json:"date" validate:"required"`
	StartTime     timeofday.TimeOfDay `json:"start_time"`
	Notes         string              `json:"notes" validate:"max=2000"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	appt, err := h.svc.Create(c.Request().Context(), CreateRequest{
		StaffID:       req.StaffID,
		ServiceID:     req.ServiceID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Date:          date,
		Start:         req.StartTime,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), appt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), appt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

type updateRequest struct {
	CustomerName *string `json:"customer_name" validate:"omitempty,max=200"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
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
	appt, err := h.svc.Update(c.Request().Context(), id, UpdateRequest{
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), appt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

type rescheduleRequest struct {
	Date      string              `json:"date" validate:"required"`
	StartTime timeofday.TimeOfDay `json:"start_time"`
	Reason    string              `json:"reason" validate:"max=500"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	appt, err := h.svc.Reschedule(c.Request().Context(), id, date, req.StartTime, req.Reason)
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), appt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.lifecycle(c, h.svc.Confirm)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.lifecycle(c, h.svc.Complete)
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	return h.lifecycle(c, h.svc.MarkNoShow)
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Cancel(c.Request().Context(), id, req.Reason)
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), appt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) lifecycle(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Appointment, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	appt, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}
	view, err := h.svc.View(c.Request().Context(), appt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) Availability(c echo.Context) error {
	staffID, err := uuid.Parse(c.QueryParam("staff_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid staff_id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}
	var serviceID *uuid.UUID
	if raw := c.QueryParam("service_id"); raw != "" {
		sid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid service_id")
		}
		serviceID = &sid
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), staffID, date, serviceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"staff_id": staffID,
		"date":     date.Format("2006-01-02"),
		"slots":    slots,
	})
}

func (h *Handler) CheckSlot(c echo.Context) error {
	staffID, err := uuid.Parse(c.QueryParam("staff_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid staff_id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}
	start, err := timeofday.Parse(c.QueryParam("start_time"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_time")
	}
	duration, err := positiveIntParam(c, "duration_minutes")
	if err != nil {
		return err
	}

	available, err := h.svc.IsSlotAvailable(c.Request().Context(), staffID, date, start, duration)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"available": available})
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var filter ListFilter
	if raw := c.QueryParam("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid staff_id")
		}
		filter.StaffID = &id
	}
	if raw := c.QueryParam("service_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid service_id")
		}
		filter.ServiceID = &id
	}
	if raw := c.QueryParam("status"); raw != "" {
		st := Status(raw)
		filter.Status = &st
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return err
		}
		filter.From = &from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return err
		}
		filter.To = &to
	}

	appts, total, err := h.svc.List(c.Request().Context(), filter, pg)
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg.Limit, pg.Offset))
}

func (h *Handler) Today(c echo.Context) error {
	appts, err := h.svc.Today(c.Request().Context())
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) Upcoming(c echo.Context) error {
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.Upcoming(c.Request().Context(), pg)
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg.Limit, pg.Offset))
}

func (h *Handler) ByDate(c echo.Context) error {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		return err
	}
	appts, err := h.svc.ListByDate(c.Request().Context(), date)
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) ByStaffDate(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("staffId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid staff id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}
	appts, err := h.svc.ListByStaffDate(c.Request().Context(), staffID, date)
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) ByPhone(c echo.Context) error {
	appts, err := h.svc.ListByCustomerPhone(c.Request().Context(), c.QueryParam("phone"))
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) UpcomingByEmail(c echo.Context) error {
	appts, err := h.svc.ListUpcomingByCustomerEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return err
	}
	views, err := h.svc.Views(c.Request().Context(), appts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) CalendarView(c echo.Context) error {
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return err
	}
	days, err := h.svc.Calendar(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

func (h *Handler) StatisticsView(c echo.Context) error {
	var staffID *uuid.UUID
	if raw := c.QueryParam("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid staff_id")
		}
		staffID = &id
	}
	stats, err := h.svc.Statistics(c.Request().Context(), staffID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}

func positiveIntParam(c echo.Context, name string) (int, error) {
	var n int
	if err := echo.QueryParamsBinder(c).Int(name, &n).BindError(); err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}
