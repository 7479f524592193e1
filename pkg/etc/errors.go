package etc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotComputed is returned when a summary or plot is requested before any
// successful SNR computation.
var ErrNotComputed = errors.New("no SNR computation has completed yet")

// ErrConditionNotSet is returned when SNR is requested before the observing
// condition has been set; the aperture geometry is undefined until then.
var ErrConditionNotSet = errors.New("observing condition has not been set")

// ConfigError reports a request that is inconsistent with the instrument
// configuration, such as an unsupported filter.
type ConfigError struct {
	Filter string
	Valid  []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not available with this instrument, please choose from [%s]",
		e.Filter, strings.Join(e.Valid, ", "))
}

// ServiceError wraps a failure of one of the external lookup services so that
// callers can distinguish dependency failures from local validation failures.
type ServiceError struct {
	Service string // "flux", "sky" or "transmission"
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
