package montyhall

import (
	"errors"
	"fmt"
)

const (
	MinDoors  = 3
	MinTrials = 1
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// Validate checks the inputs accepted at the aggregator boundary.
// The trial engine assumes they already hold.
func Validate(numDoors, numTrials int) error {
	if numDoors < MinDoors {
		return fmt.Errorf("%w: numDoors=%d, must be >= %d", ErrInvalidConfiguration, numDoors, MinDoors)
	}
	if numTrials < MinTrials {
		return fmt.Errorf("%w: numTrials=%d, must be >= %d", ErrInvalidConfiguration, numTrials, MinTrials)
	}
	return nil
}
