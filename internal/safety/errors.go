package safety

import "errors"

// ErrUnknownPolicy is returned when a policy name is not registered.
var ErrUnknownPolicy = errors.New("unknown policy")
