package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airport-service/internal/service"
)

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type accessResponse struct {
	Access string `json:"access"`
}

// register
// @Summary Register a user
// @Tags user
// @Accept json
// @Produce json
// @Param input body service.RegisterInput true "new user"
// @Success 201 {object} views.User
// @Failure 400 {object} fieldErrorsResponse
// @Router /api/user/register [post]
func (h *Handler) register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// @Summary Current user
// @Tags user
// @Produce json
// @Success 200 {object} views.User
// @Failure 401 {object} errorResponse
// @Security BearerAuth
// @Router /api/user/me [get]
func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Update the current user
// @Tags user
// @Accept json
// @Produce json
// @Param input body service.UserInput true "profile"
// @Success 200 {object} views.User
// @Failure 400 {object} fieldErrorsResponse
// @Failure 401 {object} errorResponse
// @Security BearerAuth
// @Router /api/user/me [put]
// @Router /api/user/me [patch]
func (h *Handler) updateMe(c *gin.Context) {
	var in service.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.svc.UpdateMe(c.Request.Context(), actorFrom(c), in, c.Request.Method == http.MethodPatch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// obtainToken
// @Summary Obtain an access/refresh token pair
// @Tags user
// @Accept json
// @Produce json
// @Param input body tokenRequest true "credentials"
// @Success 200 {object} auth.Pair
// @Failure 401 {object} errorResponse
// @Router /api/user/token [post]
func (h *Handler) obtainToken(c *gin.Context) {
	var in tokenRequest
	if !bindJSON(c, &in) {
		return
	}
	pair, err := h.svc.ObtainToken(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// @Summary Exchange a refresh token for a new access token
// @Tags user
// @Accept json
// @Produce json
// @Param input body refreshRequest true "refresh token"
// @Success 200 {object} accessResponse
// @Failure 401 {object} errorResponse
// @Router /api/user/token/refresh [post]
func (h *Handler) refreshToken(c *gin.Context) {
	var in refreshRequest
	if !bindJSON(c, &in) {
		return
	}
	access, err := h.svc.RefreshToken(c.Request.Context(), in.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accessResponse{Access: access})
}

// @Summary Verify a token
// @Tags user
// @Accept json
// @Param input body verifyRequest true "token"
// @Success 200
// @Failure 401 {object} errorResponse
// @Router /api/user/token/verify [post]
func (h *Handler) verifyToken(c *gin.Context) {
	var in verifyRequest
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.VerifyToken(c.Request.Context(), in.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// @Summary Blacklist a refresh token
// @Tags user
// @Accept json
// @Param input body refreshRequest true "refresh token"
// @Success 200
// @Failure 401 {object} errorResponse
// @Router /api/user/token/logout [post]
func (h *Handler) logout(c *gin.Context) {
	var in refreshRequest
	if !bindJSON(c, &in) {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), in.Refresh); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
