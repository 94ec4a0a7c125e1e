package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/model"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/service"
)

// ReservationHandler exposes the reservation lifecycle over HTTP. All
// business rules live in the service; the handler only parses input,
// forwards it and renders the result.
type ReservationHandler struct {
	Service *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler. The service
// must be non-nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Service: svc}
}

// reservationView is the public projection of a reservation. Internal
// columns such as version and the generated slot column stay hidden.
type reservationView struct {
	ReservationID     uint64 `json:"reservation_id"`
	ReservationNumber string `json:"reservation_number"`
	CustomerName      string `json:"customer_name"`
	ReservedAt        string `json:"reserved_at"`
	PartySize         int    `json:"party_size"`
	Status            string `json:"status"`
}

func toView(res *model.Reservation) reservationView {
	return reservationView{
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		CustomerName:      res.CustomerName,
		ReservedAt:        model.FormatReservationTime(res.ReservedAt),
		PartySize:         res.PartySize,
		Status:            string(res.Status),
	}
}

// Create handles POST /api/reservations. The body must contain
// customer_name, reserved_at and party_size. On success it returns 201
// with the created reservation.
func (h *ReservationHandler) Create(c echo.Context) error {
	// Bind into a pointer so an absent body stays nil and fails the
	// presence check with the right message.
	var req *service.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, model.ErrRequestRequired)
	}
	res, err := h.Service.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toView(res))
}

// GetByID handles GET /api/reservations/:id.
func (h *ReservationHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid reservation id")
	}
	res, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toView(res))
}

// GetByNumber handles GET /api/reservations/number/:number, looking a
// reservation up by its public code.
func (h *ReservationHandler) GetByNumber(c echo.Context) error {
	res, err := h.Service.GetByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toView(res))
}

// List handles GET /api/reservations. Supported query parameters:
// status (repeatable), from, to (ISO-8601, inclusive), limit and
// offset. Without filters the full collection is returned in creation
// order.
func (h *ReservationHandler) List(c echo.Context) error {
	req := service.ListReservationsRequest{
		Statuses: c.QueryParams()["status"],
		From:     c.QueryParam("from"),
		To:       c.QueryParam("to"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "limit must be a number")
		}
		req.Limit = limit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return writeErrorMessage(c, http.StatusBadRequest, "offset must be a number")
		}
		req.Offset = offset
	}
	list, err := h.Service.List(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	views := make([]reservationView, 0, len(list))
	for i := range list {
		views = append(views, toView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Cancel handles PATCH /api/reservations/:id/cancel. The request takes
// no body; the recorded cancel reason is always the fixed default.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return writeErrorMessage(c, http.StatusBadRequest, "invalid reservation id")
	}
	res, err := h.Service.Cancel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toView(res))
}
