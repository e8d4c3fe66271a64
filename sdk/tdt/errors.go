package tdt

import (
	"errors"
	"fmt"
)

// ErrUnsupportedUnit is matched by errors.Is for any UnitError
var ErrUnsupportedUnit = errors.New("unsupported unit")

// UnitError carries the unit value that could not be recognized
type UnitError struct {
	Unit string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUnsupportedUnit, e.Unit)
}

// Unwrap supports errors.Is(err, ErrUnsupportedUnit)
func (e *UnitError) Unwrap() error {
	return ErrUnsupportedUnit
}
