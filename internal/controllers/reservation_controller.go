package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideboard/internal/middleware"
	"rideboard/internal/models"
	"rideboard/internal/service"
)

type ReservationController struct {
	reservationService service.ReservationService
}

func NewReservationController(reservationService service.ReservationService) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
	}
	return userID, ok
}

// Reserve handles POST /api/v1/rides/:id/reservations
func (rc *ReservationController) Reserve(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	reservation, err := rc.reservationService.Reserve(c.Request.Context(), userID, rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewReservationResponse(reservation))
}

// Cancel handles DELETE /api/v1/rides/:id/reservations
func (rc *ReservationController) Cancel(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	result, err := rc.reservationService.Cancel(c.Request.Context(), userID, rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.CancelReservationResponse{Message: "Reservation cancelled"}
	if result.Promoted != nil {
		resp.PromotedUserID = result.Promoted.UserID
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyReservations handles GET /api/v1/me/reservations
func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := rc.reservationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": models.NewUserReservationResponses(list),
		"count":        len(list),
	})
}
