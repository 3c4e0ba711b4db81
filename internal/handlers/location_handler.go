package handlers

import (
	"errors"
	"net/http"

	"loadpulse/internal/models"
	"loadpulse/internal/repositories/interfaces"
	"loadpulse/internal/services"
	"loadpulse/internal/utils"
	"loadpulse/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocationHandler struct {
	locationService services.LocationService
}

func NewLocationHandler(locationService services.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

// CreateLocation registers a pickup or delivery location
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var request validators.CreateLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := validators.ValidateStruct(&request); err != nil {
		var verrs validators.ValidationErrors
		if errors.As(err, &verrs) {
			utils.ValidationErrorResponse(c, verrs.ToMap())
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	location := &models.Location{
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
		Address:   request.Address,
		City:      request.City,
		State:     request.State,
		ZipCode:   request.ZipCode,
		Country:   request.Country,
	}

	created, err := h.locationService.CreateLocation(c.Request.Context(), location)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOCATION_CREATION_FAILED", "Failed to create location: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Location created successfully", created)
}

// GetLocation retrieves location details
func (h *LocationHandler) GetLocation(c *gin.Context) {
	locationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid location ID")
		return
	}

	location, err := h.locationService.GetLocation(c.Request.Context(), locationID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Location")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "LOCATION_FETCH_FAILED", "Failed to get location: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Location retrieved successfully", location)
}
