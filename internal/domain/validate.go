package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidHazard marks a record that violates the HazardRecord invariants.
var ErrInvalidHazard = errors.New("invalid hazard")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("hazardtype", func(fl validator.FieldLevel) bool {
		return HazardType(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("register hazardtype validation: %v", err))
	}
	return v
}

// ValidateHazard checks the record's bounds and category. The returned error
// wraps ErrInvalidHazard and names every failing field.
func ValidateHazard(rec HazardRecord) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidHazard, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w %q: %s", ErrInvalidHazard, rec.ID, strings.Join(msgs, "; "))
}

// ValidateReport is ValidateHazard for newly ingested reports, which must
// also carry coordinates once geocoding has had its chance to fill them.
func ValidateReport(rec HazardRecord) error {
	if err := ValidateHazard(rec); err != nil {
		return err
	}
	if !rec.HasCoordinates() {
		return fmt.Errorf("%w %q: coordinates required", ErrInvalidHazard, rec.ID)
	}
	return nil
}

// ValidateAnnotation checks a clustered hazard: the record itself, a label
// no lower than NoiseCluster and IsHotspot matching the label.
func ValidateAnnotation(h AnnotatedHazard) error {
	if err := ValidateHazard(h.HazardRecord); err != nil {
		return err
	}
	if h.ClusterID < NoiseCluster {
		return fmt.Errorf("%w %q: cluster_id %d below %d", ErrInvalidHazard, h.ID, h.ClusterID, NoiseCluster)
	}
	if h.IsHotspot != (h.ClusterID != NoiseCluster) {
		return fmt.Errorf("%w %q: is_hotspot %t contradicts cluster_id %d", ErrInvalidHazard, h.ID, h.IsHotspot, h.ClusterID)
	}
	return nil
}

// ValidateAnnotations validates every clustered hazard and stops at the
// first failure.
func ValidateAnnotations(hazards []AnnotatedHazard) error {
	for i := range hazards {
		if err := ValidateAnnotation(hazards[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// ValidateHazards validates every record and stops at the first failure.
func ValidateHazards(recs []HazardRecord) error {
	for i := range recs {
		if err := ValidateHazard(recs[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "hazardtype":
		return fmt.Sprintf("%s %q is not a known hazard type", fe.Field(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s %v out of range (%s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
