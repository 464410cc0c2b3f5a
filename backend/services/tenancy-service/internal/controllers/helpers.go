package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-middleware"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

var validate = validator.New()

// formatValidationErrors converts validator errors into the shared detail DTO.
func formatValidationErrors(errs validator.ValidationErrors) []shared_dtos.ValidationErrorDetail {
	var details []shared_dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must be at least %s in length", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s in length", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		case "uuid":
			message = fmt.Sprintf("Field '%s' must be a UUID", err.Field())
		case "numeric":
			message = fmt.Sprintf("Field '%s' must be a decimal number", err.Field())
		case "datetime":
			message = fmt.Sprintf("Field '%s' must be a date formatted %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, shared_dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether the caller may
// continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	return validateOrRespond(w, dst)
}

func validateOrRespond(w http.ResponseWriter, dst any) bool {
	if err := validate.Struct(dst); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", formatValidationErrors(validationErrs), err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return false
	}
	return true
}

func actorFrom(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing actor in context", nil)
		return models.Actor{}, false
	}
	return actor, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, fmt.Sprintf("Invalid %s", name), nil, err)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps a service error onto the HTTP error envelope.
func respondServiceError(w http.ResponseWriter, err error) {
	utils.HandleAppError(w, internal_utils.ToAppError(err))
}
