// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"io"
	"syscall"
)

// fanout writes every chunk to each destination that has not failed yet,
// blocking until all of them accept it. A destination that fails is
// dropped and the others carry on; Write fails only once none is left.
type fanout struct {
	dsts []io.Writer
	errs []error
}

func newFanout(dsts ...io.Writer) *fanout {
	return &fanout{dsts: dsts, errs: make([]error, len(dsts))}
}

func (f *fanout) Write(p []byte) (int, error) {
	live := 0
	for i, w := range f.dsts {
		if f.errs[i] != nil {
			continue
		}
		if _, err := w.Write(p); err != nil {
			f.errs[i] = err
			continue
		}
		live++
	}
	if live == 0 {
		return 0, f.firstErr()
	}
	return len(p), nil
}

func (f *fanout) firstErr() error {
	for _, err := range f.errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// tee copies src into every destination until src is exhausted or no
// destination is left, then closes src and all destinations. A broken
// pipe is the normal way for a downstream stage to stop early and is not
// reported.
func tee(src io.ReadCloser, dsts ...io.WriteCloser) error {
	ws := make([]io.Writer, len(dsts))
	for i, d := range dsts {
		ws[i] = d
	}
	f := newFanout(ws...)

	_, copyErr := io.Copy(f, src)

	// Closing src before the upstream writer finishes makes it see EPIPE,
	// exactly as if a real reader had exited.
	err := src.Close()
	for _, d := range dsts {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}

	for _, e := range f.errs {
		if e != nil && !errors.Is(e, syscall.EPIPE) {
			return e
		}
	}
	if copyErr != nil && !errors.Is(copyErr, syscall.EPIPE) {
		return copyErr
	}
	return err
}
