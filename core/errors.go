package core

import (
	"errors"
)

// Common errors returned by the host while dispatching an invocation
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrNotPayable        = errors.New("function is not payable")
	ErrExecutionReverted = errors.New("execution reverted")
)
