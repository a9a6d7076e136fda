package http

import (
	"net/http"

	"sigillo/entities"
	"sigillo/siae"

	"github.com/labstack/echo/v4"
)

type validateRequest struct {
	Kind     string `json:"kind"`
	Document string `json:"document"`
}

// PostValidate runs the structural check on a caller-supplied document, the
// same check the pipeline applies before persisting.
func (h Handler) PostValidate(c echo.Context) error {
	var request validateRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	var result siae.ValidationResult
	if request.Kind == "" {
		result = siae.ValidateC1Report(request.Document)
	} else {
		result = siae.Validate(entities.TransmissionKind(request.Kind), request.Document)
	}
	return c.JSON(http.StatusOK, result)
}
