package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"airport-service/internal/storage"
)

// listAirports
// @Summary List airports
// @Tags airports
// @Produce json
// @Param name query string false "name contains"
// @Param closest_big_city query string false "closest big city contains"
// @Param limit query int false "page size (max 200)"
// @Param offset query int false "page offset"
// @Success 200 {object} listResponse[[]views.Airport]
// @Failure 400 {object} fieldErrorsResponse
// @Router /api/airports [get]
func (h *Handler) listAirports(c *gin.Context) {
	list[airportQuery](c, h.svc.ListAirports)
}

// getAirport
// @Summary Get an airport
// @Tags airports
// @Produce json
// @Param id path string true "airport id" format(uuid)
// @Success 200 {object} views.Airport
// @Failure 404 {object} errorResponse
// @Router /api/airports/{id} [get]
func (h *Handler) getAirport(c *gin.Context) {
	detail(c, h.svc.GetAirport)
}

// createAirport
// @Summary Create an airport
// @Tags airports
// @Accept json
// @Produce json
// @Param input body service.AirportInput true "airport"
// @Success 201 {object} views.Airport
// @Failure 400 {object} fieldErrorsResponse
// @Failure 401 {object} errorResponse
// @Security BearerAuth
// @Router /api/airports [post]
func (h *Handler) createAirport(c *gin.Context) {
	create(c, h.svc.CreateAirport)
}

// updateAirport
// @Summary Replace or patch an airport (staff)
// @Tags airports
// @Accept json
// @Produce json
// @Param id path string true "airport id" format(uuid)
// @Param input body service.AirportInput true "airport"
// @Success 200 {object} views.Airport
// @Failure 400 {object} fieldErrorsResponse
// @Failure 401,403,404 {object} errorResponse
// @Security BearerAuth
// @Router /api/airports/{id} [put]
// @Router /api/airports/{id} [patch]
func (h *Handler) updateAirport(c *gin.Context) {
	update(c, h.svc.UpdateAirport)
}

// @Summary List airplane types
// @Tags airplane-types
// @Produce json
// @Param name query string false "name contains"
// @Success 200 {object} listResponse[[]views.AirplaneType]
// @Router /api/airplane-types [get]
func (h *Handler) listAirplaneTypes(c *gin.Context) {
	list[airplaneTypeQuery](c, h.svc.ListAirplaneTypes)
}

// @Summary Get an airplane type
// @Tags airplane-types
// @Produce json
// @Param id path string true "airplane type id" format(uuid)
// @Success 200 {object} views.AirplaneType
// @Failure 404 {object} errorResponse
// @Router /api/airplane-types/{id} [get]
func (h *Handler) getAirplaneType(c *gin.Context) {
	detail(c, h.svc.GetAirplaneType)
}

// @Summary Create an airplane type
// @Tags airplane-types
// @Accept json
// @Produce json
// @Param input body service.AirplaneTypeInput true "airplane type"
// @Success 201 {object} views.AirplaneType
// @Failure 400 {object} fieldErrorsResponse
// @Security BearerAuth
// @Router /api/airplane-types [post]
func (h *Handler) createAirplaneType(c *gin.Context) {
	create(c, h.svc.CreateAirplaneType)
}

// @Summary Replace or patch an airplane type (staff)
// @Tags airplane-types
// @Accept json
// @Produce json
// @Param id path string true "airplane type id" format(uuid)
// @Param input body service.AirplaneTypeInput true "airplane type"
// @Success 200 {object} views.AirplaneType
// @Security BearerAuth
// @Router /api/airplane-types/{id} [put]
// @Router /api/airplane-types/{id} [patch]
func (h *Handler) updateAirplaneType(c *gin.Context) {
	update(c, h.svc.UpdateAirplaneType)
}

// @Summary List airplanes
// @Tags airplanes
// @Produce json
// @Param name query string false "name contains"
// @Param airplane_type_name query string false "airplane type name contains"
// @Param rows__gt query int false "more rows than"
// @Param rows__lt query int false "fewer rows than"
// @Success 200 {object} listResponse[[]views.AirplaneList]
// @Router /api/airplanes [get]
func (h *Handler) listAirplanes(c *gin.Context) {
	list[airplaneQuery](c, h.svc.ListAirplanes)
}

// @Summary Get an airplane
// @Tags airplanes
// @Produce json
// @Param id path string true "airplane id" format(uuid)
// @Success 200 {object} views.AirplaneDetail
// @Failure 404 {object} errorResponse
// @Router /api/airplanes/{id} [get]
func (h *Handler) getAirplane(c *gin.Context) {
	detail(c, h.svc.GetAirplane)
}

// @Summary Create an airplane
// @Tags airplanes
// @Accept json
// @Produce json
// @Param input body service.AirplaneInput true "airplane"
// @Success 201 {object} views.AirplaneDetail
// @Failure 400 {object} fieldErrorsResponse
// @Security BearerAuth
// @Router /api/airplanes [post]
func (h *Handler) createAirplane(c *gin.Context) {
	create(c, h.svc.CreateAirplane)
}

// @Summary Replace or patch an airplane (staff)
// @Tags airplanes
// @Accept json
// @Produce json
// @Param id path string true "airplane id" format(uuid)
// @Param input body service.AirplaneInput true "airplane"
// @Success 200 {object} views.AirplaneDetail
// @Security BearerAuth
// @Router /api/airplanes/{id} [put]
// @Router /api/airplanes/{id} [patch]
func (h *Handler) updateAirplane(c *gin.Context) {
	update(c, h.svc.UpdateAirplane)
}

// maxUploadRequest leaves room for the multipart envelope around the file.
const maxUploadRequest = storage.MaxUploadBytes + 1<<20

// uploadAirplaneImage
// @Summary Upload an airplane image (staff)
// @Description The image is resized to fit 1024x1024 before it is stored.
// @Tags airplanes
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "airplane id" format(uuid)
// @Param image formData file true "jpeg, png, gif, tiff or bmp"
// @Success 200 {object} views.AirplaneDetail
// @Failure 400 {object} fieldErrorsResponse
// @Failure 401,403,404 {object} errorResponse
// @Security BearerAuth
// @Router /api/airplanes/{id}/upload-image [post]
func (h *Handler) uploadAirplaneImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequest)
	header, err := c.FormFile("image")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		newFieldErrorsResponse(c, map[string]string{"image": storage.ErrImageTooLarge.Error()})
		return
	case err != nil:
		newFieldErrorsResponse(c, map[string]string{"image": "No file was submitted."})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	out, err := h.svc.UploadAirplaneImage(c.Request.Context(), actorFrom(c), id, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary List crew
// @Tags crew
// @Produce json
// @Param first_name query string false "first name contains"
// @Param last_name query string false "last name contains"
// @Success 200 {object} listResponse[[]views.CrewList]
// @Router /api/crew [get]
func (h *Handler) listCrew(c *gin.Context) {
	list[crewQuery](c, h.svc.ListCrew)
}

// @Summary Get a crew member
// @Tags crew
// @Produce json
// @Param id path string true "crew id" format(uuid)
// @Success 200 {object} views.Crew
// @Router /api/crew/{id} [get]
func (h *Handler) getCrew(c *gin.Context) {
	detail(c, h.svc.GetCrew)
}

// @Summary Create a crew member
// @Tags crew
// @Accept json
// @Produce json
// @Param input body service.CrewInput true "crew member"
// @Success 201 {object} views.Crew
// @Security BearerAuth
// @Router /api/crew [post]
func (h *Handler) createCrew(c *gin.Context) {
	create(c, h.svc.CreateCrew)
}

// @Summary Replace or patch a crew member (staff)
// @Tags crew
// @Accept json
// @Produce json
// @Param id path string true "crew id" format(uuid)
// @Param input body service.CrewInput true "crew member"
// @Success 200 {object} views.Crew
// @Security BearerAuth
// @Router /api/crew/{id} [put]
// @Router /api/crew/{id} [patch]
func (h *Handler) updateCrew(c *gin.Context) {
	update(c, h.svc.UpdateCrew)
}

// @Summary List routes
// @Tags routes
// @Produce json
// @Param source_name query string false "source airport name contains"
// @Param destination_name query string false "destination airport name contains"
// @Param distance__gt query int false "longer than (km)"
// @Param distance__lt query int false "shorter than (km)"
// @Success 200 {object} listResponse[[]views.RouteList]
// @Router /api/routes [get]
func (h *Handler) listRoutes(c *gin.Context) {
	list[routeQuery](c, h.svc.ListRoutes)
}

// @Summary Get a route
// @Tags routes
// @Produce json
// @Param id path string true "route id" format(uuid)
// @Success 200 {object} views.RouteDetail
// @Router /api/routes/{id} [get]
func (h *Handler) getRoute(c *gin.Context) {
	detail(c, h.svc.GetRoute)
}

// @Summary Create a route
// @Tags routes
// @Accept json
// @Produce json
// @Param input body service.RouteInput true "route"
// @Success 201 {object} views.RouteDetail
// @Failure 400 {object} fieldErrorsResponse
// @Security BearerAuth
// @Router /api/routes [post]
func (h *Handler) createRoute(c *gin.Context) {
	create(c, h.svc.CreateRoute)
}

// @Summary Replace or patch a route (staff)
// @Tags routes
// @Accept json
// @Produce json
// @Param id path string true "route id" format(uuid)
// @Param input body service.RouteInput true "route"
// @Success 200 {object} views.RouteDetail
// @Security BearerAuth
// @Router /api/routes/{id} [put]
// @Router /api/routes/{id} [patch]
func (h *Handler) updateRoute(c *gin.Context) {
	update(c, h.svc.UpdateRoute)
}
