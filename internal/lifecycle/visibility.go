package lifecycle

import (
	"time"

	"clubsite/internal/domain"
)

// IsPubliclyVisible reports whether r may appear on the public site at now.
// Only published resources are visible. With upcoming set, dated kinds must
// also start at or after now; undated kinds ignore the flag.
func IsPubliclyVisible(r domain.Publishable, now time.Time, upcoming bool) bool {
	if !r.Base().IsPublished() {
		return false
	}
	if !upcoming {
		return true
	}
	dated, ok := r.(domain.DateRanged)
	if !ok {
		return true
	}
	return !dated.StartsAt().Before(now)
}
