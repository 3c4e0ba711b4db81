package validators

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("object_id", validateObjectID)
}

func validateObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ToMap flattens the errors into the field->message shape the API responds
// with.
func (v ValidationErrors) ToMap() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Field] = err.Message
	}
	return m
}

type CreateLoadRequest struct {
	ReferenceNumber     string    `json:"reference_number" validate:"omitempty,max=50"`
	ShipperID           string    `json:"shipper_id" validate:"required,object_id"`
	PickupLocationID    string    `json:"pickup_location_id" validate:"required,object_id"`
	DeliveryLocationID  string    `json:"delivery_location_id" validate:"required,object_id"`
	Weight              float64   `json:"weight" validate:"required,gt=0"`
	Rate                float64   `json:"rate" validate:"omitempty,gte=0"`
	EquipmentType       string    `json:"equipment_type" validate:"required,max=50"`
	LoadType            string    `json:"load_type" validate:"omitempty,oneof=ftl ltl expedited"`
	Hazmat              bool      `json:"hazmat"`
	Commodity           string    `json:"commodity" validate:"omitempty,max=255"`
	PickupWindowStart   time.Time `json:"pickup_window_start" validate:"required"`
	PickupWindowEnd     time.Time `json:"pickup_window_end" validate:"required,gtfield=PickupWindowStart"`
	DeliveryWindowStart time.Time `json:"delivery_window_start" validate:"required"`
	DeliveryWindowEnd   time.Time `json:"delivery_window_end" validate:"required,gtfield=DeliveryWindowStart"`

	// Demand pipeline switches; defaults mirror server config.
	SkipAggregation     bool  `json:"skip_aggregation"`
	RealTimeUpdates     *bool `json:"real_time_updates"`
	EnableNotifications bool  `json:"enable_notifications"`
}

type CreateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Address   string  `json:"address" validate:"omitempty,max=255"`
	City      string  `json:"city" validate:"required,max=100"`
	State     string  `json:"state" validate:"required,max=100"`
	ZipCode   string  `json:"zip_code" validate:"omitempty,max=20"`
	Country   string  `json:"country" validate:"omitempty,max=100"`
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Message: messageForTag(fieldErr),
		})
	}
	return errs
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "object_id":
		return "must be a valid object ID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	case "gt", "gte":
		return "must be a positive value"
	case "min", "max":
		return "out of allowed range"
	}
	return "invalid value"
}
