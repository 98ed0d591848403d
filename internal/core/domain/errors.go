package domain

import "fmt"

// StoreError wraps a failure reported by the data layer. These surface to
// clients as 400 responses carrying the underlying message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore tags err with the failing operation. A nil err stays nil.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
