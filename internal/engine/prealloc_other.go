//go:build !linux

package engine

import (
	"errors"
	"os"
)

func preallocate(*os.File, int64) error {
	return errors.ErrUnsupported
}
