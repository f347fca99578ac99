// Package repository defines error values that are reused across multiple
// repositories. These sentinel values let handlers distinguish failure
// scenarios without inspecting driver errors: a missing row, a business
// rule violation such as booking an occupied spot, or an attempt to
// resize a lot whose spots already exist.
package repository

import "errors"

// ErrLotNotFound is returned when a parking lot id resolves to no row.
var ErrLotNotFound = errors.New("parking lot not found")

// ErrSpotNotFound is returned when a parking spot id resolves to no row.
var ErrSpotNotFound = errors.New("parking spot not found")

// ErrSpotOccupied is returned when a booking is attempted on a spot whose
// occupied flag is set. Handlers should translate this into HTTP 409.
var ErrSpotOccupied = errors.New("parking spot already occupied")

// ErrBookingNotFound is returned when a booking id resolves to no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrBookingCompleted is returned when a release is attempted on a booking
// that is no longer Active. A second release is an error, not a no-op.
var ErrBookingCompleted = errors.New("booking already completed")

// ErrUserNotFound is returned when a user id resolves to no row.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when registration collides with an
// existing username. Handlers should translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrLotResized is returned when an update tries to change a lot's
// max_spots after its spots were created. Spot count is immutable.
var ErrLotResized = errors.New("max spots cannot be changed after creation")
