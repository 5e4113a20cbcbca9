// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"os"
	"sync"
	"syscall"
)

// Exit is the reaped outcome of one launched process.
type Exit struct {
	Stage  int
	Pid    int
	Status int
	Err    error // set if waiting itself failed
}

type tracked struct {
	stage int
	proc  *os.Process
}

// Supervisor owns everything one pipeline execution creates: descriptors
// the parent still holds, launched processes and fan-out helpers. It is
// created per execution and discarded once Wait returns.
type Supervisor struct {
	owned []*os.File
	procs []tracked
	wg    sync.WaitGroup

	mu         sync.Mutex
	helperErrs []error
}

// Own registers a descriptor held by the parent.
func (s *Supervisor) Own(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			s.owned = append(s.owned, f)
		}
	}
}

// Disown hands a descriptor over to someone else (a helper), who becomes
// responsible for closing it.
func (s *Supervisor) Disown(files ...*os.File) {
	for _, f := range files {
		s.remove(f)
	}
}

// Close closes a descriptor if the parent still owns it. Closing an
// unowned or nil descriptor is a no-op, so every path may call it.
func (s *Supervisor) Close(files ...*os.File) {
	for _, f := range files {
		if s.remove(f) {
			f.Close()
		}
	}
}

func (s *Supervisor) remove(f *os.File) bool {
	if f == nil {
		return false
	}
	for i, o := range s.owned {
		if o == f {
			s.owned = append(s.owned[:i], s.owned[i+1:]...)
			return true
		}
	}
	return false
}

// Track takes ownership of a launched process until it is reaped.
func (s *Supervisor) Track(stage int, proc *os.Process) {
	s.procs = append(s.procs, tracked{stage: stage, proc: proc})
}

// Go runs a helper that is joined by Wait.
func (s *Supervisor) Go(fn func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(); err != nil {
			s.mu.Lock()
			s.helperErrs = append(s.helperErrs, err)
			s.mu.Unlock()
		}
	}()
}

// CloseAll closes every descriptor the parent still holds.
func (s *Supervisor) CloseAll() {
	for _, f := range s.owned {
		f.Close()
	}
	s.owned = nil
}

// Wait closes every descriptor the parent still holds, so no reader is
// kept from seeing end of input, then reaps every process in launch order
// and joins every helper. Nothing launched by this supervisor survives it.
func (s *Supervisor) Wait() ([]Exit, []error) {
	s.CloseAll()

	exits := make([]Exit, 0, len(s.procs))
	for _, t := range s.procs {
		e := Exit{Stage: t.stage, Pid: t.proc.Pid}
		state, err := t.proc.Wait()
		if err != nil {
			e.Status, e.Err = -1, err
		} else {
			e.Status = exitStatus(state)
		}
		exits = append(exits, e)
	}
	s.procs = nil

	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.helperErrs
	s.helperErrs = nil
	return exits, errs
}

// exitStatus maps a process state to a shell-style status: the exit code,
// or 128+signal for a process killed by a signal.
func exitStatus(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
