package workflow

import (
	"fmt"
	"time"
)

// EffectiveLimit returns the number of past days an authority may submit
// for: its own limit, capped at globalMax.
func EffectiveLimit(autoridadLimit, globalMax int) int {
	if autoridadLimit < 0 {
		return 0
	}
	return min(autoridadLimit, globalMax)
}

// CheckWindow accepts fecha when it lies in [today-limit, today]. Both
// dates must be in the stored date form.
func CheckWindow(today, fecha time.Time, limit int) error {
	if limit < 0 {
		limit = 0
	}
	earliest := today.AddDate(0, 0, -limit)
	if fecha.After(today) || fecha.Before(earliest) {
		if limit == 0 {
			return ValidationError{Message: "La fecha no debe ser distinta a hoy."}
		}
		return ValidationError{Message: fmt.Sprintf("La fecha no debe ser del futuro ni anterior a %d días.", limit)}
	}
	return nil
}
