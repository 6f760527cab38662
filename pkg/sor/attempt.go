package sor

import "github.com/pkg/errors"

// attempt is one leg of an ordered fallback chain. Both the filename
// decoding chain and the delegated-codec pipeline are expressed as a list
// of attempts resolved by firstSuccess.
type attempt[T any] struct {
	name string
	run  func() (T, error)
}

// firstSuccess runs attempts in order and returns the first successful
// result together with the name of the attempt that produced it. When every
// attempt fails it returns the last error.
func firstSuccess[T any](attempts []attempt[T]) (T, string, error) {
	var zero T
	err := errors.New("no attempts")
	for _, a := range attempts {
		var v T
		if v, err = a.run(); err == nil {
			return v, a.name, nil
		}
	}
	return zero, "", err
}
