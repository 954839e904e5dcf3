package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	genaipkg "github.com/jencodes13/course-correction/internal/genai"
)

// validateBody runs the struct validation tags on a decoded request body and
// converts the first failure into a client validation error.
func (s *Server) validateBody(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			return &ErrValidation{Field: field, Message: field + " is required"}
		case "max":
			return &ErrValidation{Field: field, Message: field + " exceeds the maximum length"}
		default:
			return &ErrValidation{Field: field, Message: "invalid value"}
		}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

// unmarshalModelJSON strips code fences from model output and unmarshals it.
// Failures are contract violations: the model was asked for this shape.
func unmarshalModelJSON(text string, v any) error {
	cleaned := genaipkg.CleanJSONBlock(text)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", genaipkg.ErrModelContract, err)
	}
	return nil
}
