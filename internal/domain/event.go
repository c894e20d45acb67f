package domain

import "time"

// Event is a dated club happening.
// swagger:model Event
type Event struct {
	Resource
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// NewEvent returns a new Event. ID and slug are assigned on create.
func NewEvent(title string, status Status, startDate time.Time) *Event {
	return &Event{
		Resource:  Resource{Title: title, Status: status},
		StartDate: startDate,
	}
}

func (e *Event) Base() *Resource { return &e.Resource }

func (e *Event) Spec() KindSpec { return EventSpec }

func (e *Event) StartsAt() time.Time { return e.StartDate }

// Validate checks required fields and the date range.
func (e *Event) Validate() error {
	if err := e.Resource.validate(); err != nil {
		return err
	}
	if e.StartDate.IsZero() {
		return NewValidationError("start_date", "start_date is required")
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return NewValidationError("end_date", "end_date must not be before start_date")
	}
	return nil
}
