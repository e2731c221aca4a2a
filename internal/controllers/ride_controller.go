package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideboard/internal/middleware"
	"rideboard/internal/models"
	"rideboard/internal/service"
)

type RideController struct {
	rideService service.RideService
	frontendURL string
}

func NewRideController(rideService service.RideService, frontendURL string) *RideController {
	return &RideController{
		rideService: rideService,
		frontendURL: frontendURL,
	}
}

// PublishRide handles POST /api/v1/rides. Anonymous callers may publish;
// the returned secret is then their only way to remove the ride.
func (rc *RideController) PublishRide(c *gin.Context) {
	var req models.PublishRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var owner *string
	if userID, ok := middleware.UserID(c); ok {
		owner = &userID
	}

	ride, err := rc.rideService.Publish(c.Request.Context(), owner, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PublishRideResponse{
		Ride:     models.NewRideResponse(ride),
		Secret:   ride.Secret,
		ShareURL: ShareURL(rc.frontendURL, ride.ID),
	})
}

// ListRides handles GET /api/v1/rides
func (rc *RideController) ListRides(c *gin.Context) {
	rides, err := rc.rideService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rides": models.NewRideResponses(rides),
		"count": len(rides),
	})
}

// GetRide handles GET /api/v1/rides/:id
func (rc *RideController) GetRide(c *gin.Context) {
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	details, err := rc.rideService.Get(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RideDetailsResponse{
		RideResponse: models.NewRideResponse(details.Ride),
		Confirmed:    details.Confirmed,
		Waiting:      details.Waiting,
	})
}

// RemoveRide handles DELETE /api/v1/rides/:id. The owner, an admin, or
// whoever presents the ride's secret may remove it.
func (rc *RideController) RemoveRide(c *gin.Context) {
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	if err := rc.rideService.Remove(c.Request.Context(), rideID, middleware.Requester(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ride removed successfully",
	})
}

// GetMyRides handles GET /api/v1/me/rides
func (rc *RideController) GetMyRides(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return
	}

	rides, err := rc.rideService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rides": models.NewRideResponses(rides),
		"count": len(rides),
	})
}
