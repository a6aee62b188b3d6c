package wire

import (
	"errors"
	"fmt"
)

// ErrDecode wraps malformed-payload and unknown-variant decode failures.
var ErrDecode = errors.New("wire: decode error")

// ErrUnknownVariant is a more specific Decode error for a oneof
// discriminant this build does not recognize — fatal within protocol
// version 1, where the variant set is frozen.
var ErrUnknownVariant = fmt.Errorf("%w: unknown message variant", ErrDecode)
