package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "airport-service/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"airport-service/internal/policy"
	"airport-service/internal/service"
)

type Handler struct {
	svc service.API

	mediaURL  string
	mediaRoot string
}

type Option func(*Handler)

// WithMedia serves uploaded files from root under url.
func WithMedia(url, root string) Option {
	return func(h *Handler) { h.mediaURL, h.mediaRoot = url, root }
}

func NewHandler(s service.API, opts ...Option) *Handler {
	registerValidators()
	h := &Handler{svc: s}
	for _, o := range opts {
		o(h)
	}
	return h
}

type listResponse[V any] struct {
	Data V `json:"data"`
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), requestLogger(), metrics())

	api := router.Group("/api", h.authenticate)
	{
		airports := api.Group("/airports")
		airports.GET("", h.listAirports)
		airports.POST("", h.createAirport)
		airports.GET("/:id", h.getAirport)
		airports.PUT("/:id", h.updateAirport)
		airports.PATCH("/:id", h.updateAirport)
		airports.DELETE("/:id", h.deleteResource(policy.Airport))

		types := api.Group("/airplane-types")
		types.GET("", h.listAirplaneTypes)
		types.POST("", h.createAirplaneType)
		types.GET("/:id", h.getAirplaneType)
		types.PUT("/:id", h.updateAirplaneType)
		types.PATCH("/:id", h.updateAirplaneType)
		types.DELETE("/:id", h.deleteResource(policy.AirplaneType))

		airplanes := api.Group("/airplanes")
		airplanes.GET("", h.listAirplanes)
		airplanes.POST("", h.createAirplane)
		airplanes.GET("/:id", h.getAirplane)
		airplanes.PUT("/:id", h.updateAirplane)
		airplanes.PATCH("/:id", h.updateAirplane)
		airplanes.DELETE("/:id", h.deleteResource(policy.Airplane))
		airplanes.POST("/:id/upload-image", h.uploadAirplaneImage)

		crew := api.Group("/crew")
		crew.GET("", h.listCrew)
		crew.POST("", h.createCrew)
		crew.GET("/:id", h.getCrew)
		crew.PUT("/:id", h.updateCrew)
		crew.PATCH("/:id", h.updateCrew)
		crew.DELETE("/:id", h.deleteResource(policy.Crew))

		routes := api.Group("/routes")
		routes.GET("", h.listRoutes)
		routes.POST("", h.createRoute)
		routes.GET("/:id", h.getRoute)
		routes.PUT("/:id", h.updateRoute)
		routes.PATCH("/:id", h.updateRoute)
		routes.DELETE("/:id", h.deleteResource(policy.Route))

		flights := api.Group("/flights")
		flights.GET("", h.listFlights)
		flights.POST("", h.createFlight)
		flights.GET("/:id", h.getFlight)
		flights.PUT("/:id", h.updateFlight)
		flights.PATCH("/:id", h.updateFlight)
		flights.DELETE("/:id", h.deleteResource(policy.Flight))

		orders := api.Group("/orders")
		orders.GET("", h.listOrders)
		orders.POST("", h.createOrder)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id", h.updateOrder)
		orders.PATCH("/:id", h.updateOrder)
		orders.DELETE("/:id", h.deleteResource(policy.Order))

		tickets := api.Group("/tickets")
		tickets.GET("", h.listTickets)
		tickets.POST("", h.createTicket)
		tickets.GET("/:id", h.getTicket)
		tickets.PUT("/:id", h.updateTicket)
		tickets.PATCH("/:id", h.updateTicket)
		tickets.DELETE("/:id", h.deleteResource(policy.Ticket))

		me := api.Group("/user/me")
		me.GET("", h.me)
		me.PUT("", h.updateMe)
		me.PATCH("", h.updateMe)
	}

	// Account endpoints ignore the Authorization header, so an expired
	// access token does not block login or refresh.
	account := router.Group("/api/user")
	{
		account.POST("/register", h.register)
		account.POST("/token", h.obtainToken)
		account.POST("/token/refresh", h.refreshToken)
		account.POST("/token/verify", h.verifyToken)
		account.POST("/token/logout", h.logout)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if h.mediaRoot != "" && h.mediaURL != "" {
		router.Static(strings.TrimSuffix(h.mediaURL, "/"), h.mediaRoot)
	}

	router.NoMethod(func(c *gin.Context) {
		newErrorResponse(c, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.NoRoute(func(c *gin.Context) {
		newErrorResponse(c, http.StatusNotFound, "not found")
	})

	return router
}

// pathID parses the :id segment. A malformed id can never match a record,
// so it is reported as 404.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}

type filterQuery[F any] interface {
	filter() (F, error)
}

func list[Q filterQuery[F], F, V any](c *gin.Context, fetch func(context.Context, policy.Actor, F) (V, error)) {
	var q Q
	if !bindQuery(c, &q) {
		return
	}
	f, err := q.filter()
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := fetch(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[V]{Data: out})
}

func detail[V any](c *gin.Context, fetch func(context.Context, policy.Actor, uuid.UUID) (V, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := fetch(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func create[I, V any](c *gin.Context, write func(context.Context, policy.Actor, I) (V, error)) {
	var in I
	if !bindJSON(c, &in) {
		return
	}
	out, err := write(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// update serves both PUT (full replacement) and PATCH (partial).
func update[I, V any](c *gin.Context, write func(context.Context, policy.Actor, uuid.UUID, I, bool) (V, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in I
	if !bindJSON(c, &in) {
		return
	}
	out, err := write(c.Request.Context(), actorFrom(c), id, in, c.Request.Method == http.MethodPatch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// deleteResource
// @Summary Delete a resource
// @Description Only staff may delete, and only flights. Every other resource answers 403.
// @Tags flights
// @Param id path string true "flight id" format(uuid)
// @Success 204
// @Failure 401,403,404 {object} errorResponse
// @Security BearerAuth
// @Router /api/flights/{id} [delete]
func (h *Handler) deleteResource(res policy.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := h.svc.Delete(c.Request.Context(), actorFrom(c), res, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
