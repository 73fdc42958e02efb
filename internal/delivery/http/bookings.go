package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airport-service/internal/service"
)

// @Summary List flights
// @Tags flights
// @Produce json
// @Param source_airport query string false "source airport id or name fragment"
// @Param destination_airport query string false "destination airport id or name fragment"
// @Param departure_date query string false "YYYY-MM-DD"
// @Param crew query string false "comma-separated crew ids (any of)"
// @Param airplane_type query string false "airplane type id" format(uuid)
// @Success 200 {object} listResponse[[]views.FlightList]
// @Failure 400 {object} fieldErrorsResponse
// @Router /api/flights [get]
func (h *Handler) listFlights(c *gin.Context) {
	list[flightQuery](c, h.svc.ListFlights)
}

// @Summary Get a flight
// @Tags flights
// @Produce json
// @Param id path string true "flight id" format(uuid)
// @Success 200 {object} views.FlightDetail
// @Failure 404 {object} errorResponse
// @Router /api/flights/{id} [get]
func (h *Handler) getFlight(c *gin.Context) {
	detail(c, h.svc.GetFlight)
}

// @Summary Create a flight (staff)
// @Tags flights
// @Accept json
// @Produce json
// @Param input body service.FlightInput true "flight"
// @Success 201 {object} views.FlightDetail
// @Failure 400 {object} fieldErrorsResponse
// @Failure 401,403 {object} errorResponse
// @Security BearerAuth
// @Router /api/flights [post]
func (h *Handler) createFlight(c *gin.Context) {
	create(c, h.svc.CreateFlight)
}

// @Summary Replace or patch a flight (staff)
// @Tags flights
// @Accept json
// @Produce json
// @Param id path string true "flight id" format(uuid)
// @Param input body service.FlightInput true "flight"
// @Success 200 {object} views.FlightDetail
// @Security BearerAuth
// @Router /api/flights/{id} [put]
// @Router /api/flights/{id} [patch]
func (h *Handler) updateFlight(c *gin.Context) {
	update(c, h.svc.UpdateFlight)
}

// listOrders
// @Summary List own orders
// @Tags orders
// @Produce json
// @Param created_at__gt query string false "RFC3339"
// @Param created_at__lt query string false "RFC3339"
// @Success 200 {object} listResponse[[]views.OrderList]
// @Failure 401 {object} errorResponse
// @Security BearerAuth
// @Router /api/orders [get]
func (h *Handler) listOrders(c *gin.Context) {
	list[orderQuery](c, h.svc.ListOrders)
}

// @Summary Get an own order
// @Tags orders
// @Produce json
// @Param id path string true "order id" format(uuid)
// @Success 200 {object} views.OrderDetail
// @Failure 401,404 {object} errorResponse
// @Security BearerAuth
// @Router /api/orders/{id} [get]
func (h *Handler) getOrder(c *gin.Context) {
	detail(c, h.svc.GetOrder)
}

// createOrder
// @Summary Book an order with its tickets
// @Description All tickets are stored or none is. Field errors of ticket K are reported as tickets.K.<field>.
// @Tags orders
// @Accept json
// @Produce json
// @Param input body service.OrderInput true "order"
// @Success 201 {object} views.OrderDetail
// @Failure 400 {object} fieldErrorsResponse
// @Failure 401 {object} errorResponse
// @Security BearerAuth
// @Router /api/orders [post]
func (h *Handler) createOrder(c *gin.Context) {
	create(c, h.svc.CreateOrder)
}

// @Summary Replace the tickets of an own order (staff)
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "order id" format(uuid)
// @Param input body service.OrderInput true "order"
// @Success 200 {object} views.OrderDetail
// @Security BearerAuth
// @Router /api/orders/{id} [put]
// @Router /api/orders/{id} [patch]
func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.OrderInput
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.svc.UpdateOrder(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary List tickets
// @Description Regular users see their own tickets only.
// @Tags tickets
// @Produce json
// @Param row query int false "row"
// @Param seat query int false "seat"
// @Success 200 {object} listResponse[[]views.TicketList]
// @Security BearerAuth
// @Router /api/tickets [get]
func (h *Handler) listTickets(c *gin.Context) {
	list[ticketQuery](c, h.svc.ListTickets)
}

// @Summary Get a ticket
// @Tags tickets
// @Produce json
// @Param id path string true "ticket id" format(uuid)
// @Success 200 {object} views.TicketDetail
// @Failure 401,404 {object} errorResponse
// @Security BearerAuth
// @Router /api/tickets/{id} [get]
func (h *Handler) getTicket(c *gin.Context) {
	detail(c, h.svc.GetTicket)
}

// @Summary Book a ticket on an own order
// @Tags tickets
// @Accept json
// @Produce json
// @Param input body service.TicketInput true "ticket"
// @Success 201 {object} views.TicketDetail
// @Failure 400 {object} fieldErrorsResponse
// @Security BearerAuth
// @Router /api/tickets [post]
func (h *Handler) createTicket(c *gin.Context) {
	create(c, h.svc.CreateTicket)
}

// @Summary Replace or patch a ticket (staff)
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "ticket id" format(uuid)
// @Param input body service.TicketInput true "ticket"
// @Success 200 {object} views.TicketDetail
// @Security BearerAuth
// @Router /api/tickets/{id} [put]
// @Router /api/tickets/{id} [patch]
func (h *Handler) updateTicket(c *gin.Context) {
	update(c, h.svc.UpdateTicket)
}
