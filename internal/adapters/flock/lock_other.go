//go:build !unix

package flock

import (
	"errors"
	"os"

	"go.trai.ch/coman/internal/core/domain"
)

// tryLock falls back to an exclusively created marker file where flock(2)
// is unavailable. A crashed holder leaves the file behind and must be
// cleared by hand.
func tryLock(path string) (*Lock, bool, error) {
	held := path + ".held"
	f, err := os.OpenFile(held, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.PrivateFilePerm) //nolint:gosec // path built by Locker
	if errors.Is(err, os.ErrExist) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	_, _ = f.Write(pidContent())
	if err := f.Close(); err != nil {
		return nil, false, err
	}

	return &Lock{release: func() error {
		return os.Remove(held)
	}}, false, nil
}
