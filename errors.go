package explorer

import "errors"

var (
	// ErrInvalidConfig is returned when a scenario cannot describe a valid universe.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidMass is returned for bodies of zero, negative or non finite mass.
	ErrInvalidMass = errors.New("mass must be positive")
	// ErrCoincidentBodies is returned when two distinct bodies occupy the same point.
	ErrCoincidentBodies = errors.New("distinct bodies at the same location")
	// ErrDuplicateBody is returned when two bodies share a name.
	ErrDuplicateBody = errors.New("duplicate body name")
	// ErrUnknownBody is returned when looking up a body which is not in the universe.
	ErrUnknownBody = errors.New("unknown body")
	// ErrNonFinite is returned for NaN or infinite inputs.
	ErrNonFinite = errors.New("non finite value")
	// ErrInvalidTimeStep is returned for negative time steps.
	ErrInvalidTimeStep = errors.New("invalid time step")
	// ErrInvalidRotation is returned for rotations which cannot be built.
	ErrInvalidRotation = errors.New("invalid rotation")
	// ErrNotPiloted is returned when a control operation targets a body without an orientation.
	ErrNotPiloted = errors.New("body is not piloted")
)
