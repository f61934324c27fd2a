package schedule

import "errors"

var (
	ErrVenueOutOfRange   = errors.New("venue index out of range")
	ErrCellOutOfRange    = errors.New("grid cell out of range")
	ErrSlotOutOfRange    = errors.New("time slot out of range")
	ErrLastVenue         = errors.New("cannot remove the last venue")
	ErrInvalidSlotSeries = errors.New("slot series needs a HH:MM start time and a positive duration")
	ErrMatchRequired     = errors.New("a match with an id is required")
)

var ErrMatchNotFound = errors.New("match not found in the tournament match list")
