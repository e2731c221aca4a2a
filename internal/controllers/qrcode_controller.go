package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"rideboard/internal/service"
)

const qrCodeSize = 256

type QRCodeController struct {
	rideService service.RideService
	frontendURL string
}

func NewQRCodeController(rideService service.RideService, frontendURL string) *QRCodeController {
	return &QRCodeController{
		rideService: rideService,
		frontendURL: frontendURL,
	}
}

// ShareURL is the public page for a ride.
func ShareURL(frontendURL string, rideID int64) string {
	return fmt.Sprintf("%s/rides/%d", frontendURL, rideID)
}

// GenerateQRCode handles GET /api/v1/rides/:id/qrcode
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	// Only visible rides get a code.
	if _, err := qc.rideService.Get(c.Request.Context(), rideID); err != nil {
		respondError(c, err)
		return
	}

	qrCode, err := qrcode.New(ShareURL(qc.frontendURL, rideID), qrcode.Medium)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate QR code",
		})
		return
	}

	pngData, err := qrCode.PNG(qrCodeSize)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate QR code image",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=ride-%d.png", rideID))
	c.Data(http.StatusOK, "image/png", pngData)
}
