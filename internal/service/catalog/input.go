package catalog

import (
	"strings"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// SearchInput holds the parameters of a product search. Lat and Lng are
// optional but must be given together.
type SearchInput struct {
	Query string
	Lat   *float64
	Lng   *float64
}

// Validate checks all fields and collects all errors.
func (i SearchInput) Validate() error {
	var errs []domain.FieldError

	q := strings.TrimSpace(i.Query)
	if q == "" {
		errs = append(errs, domain.FieldError{Field: "q", Message: "required"})
	}
	if len(q) > 200 {
		errs = append(errs, domain.FieldError{Field: "q", Message: "max 200 characters"})
	}

	if (i.Lat == nil) != (i.Lng == nil) {
		errs = append(errs, domain.FieldError{Field: "lat,lng", Message: "must be provided together"})
	}
	if i.Lat != nil && (*i.Lat < -90 || *i.Lat > 90) {
		errs = append(errs, domain.FieldError{Field: "lat", Message: "must be between -90 and 90"})
	}
	if i.Lng != nil && (*i.Lng < -180 || *i.Lng > 180) {
		errs = append(errs, domain.FieldError{Field: "lng", Message: "must be between -180 and 180"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i SearchInput) hasLocation() bool { return i.Lat != nil && i.Lng != nil }
