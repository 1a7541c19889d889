// Package store owns the published notification and feedback collections of
// one actor session and is the only place they are mutated.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
)

// subscriberBuffer is the channel depth handed to each snapshot subscriber.
const subscriberBuffer = 4

var validate = validator.New()

// Dispatcher receives notifications after they have been persisted.
type Dispatcher interface {
	Dispatch(n model.Notification)
}

// validationError flattens validator failures into a single Validation error.
func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(op, "%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be between %d and %d", field, model.MinRating, model.MaxRating))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperr.Validation(op, "%s", strings.Join(msgs, "; "))
}
