/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package invalidation records the filesystem facts a resolution depended on,
// so that a caller can re-run it when one of them changes.
package invalidation

import (
	"errors"
	"io/fs"
	"sync"
)

// CreateAbove means: a file named FileName created in Above or any of its
// ancestors would change the result.
type CreateAbove struct {
	FileName string
	Above    string
}

// Invalidations accumulates dependencies for a single resolution.
// Accessors return entries in first-recorded order, without duplicates.
//
// The zero value is ready to use. An Invalidations is safe for concurrent
// use, although each resolution normally owns its own.
type Invalidations struct {
	mu          sync.Mutex
	changes     orderedSet[string]
	creates     orderedSet[string]
	createAbove orderedSet[CreateAbove]
}

// New returns an empty recorder.
func New() *Invalidations {
	return &Invalidations{}
}

// InvalidateOnFileChange records that the contents of path were read.
func (inv *Invalidations) InvalidateOnFileChange(path string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.changes.add(path)
}

// InvalidateOnFileCreate records that path was looked for and not found.
func (inv *Invalidations) InvalidateOnFileCreate(path string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.creates.add(path)
}

// InvalidateOnFileCreateAbove records an ancestor search for fileName
// starting at above.
func (inv *Invalidations) InvalidateOnFileCreateAbove(fileName, above string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.createAbove.add(CreateAbove{FileName: fileName, Above: above})
}

// FileChanges returns the recorded file-change paths.
func (inv *Invalidations) FileChanges() []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.changes.list()
}

// FileCreates returns the recorded file-create paths.
func (inv *Invalidations) FileCreates() []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.creates.list()
}

// FileCreatesAbove returns the recorded ancestor searches.
func (inv *Invalidations) FileCreatesAbove() []CreateAbove {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.createAbove.list()
}

// Empty reports whether nothing has been recorded.
func (inv *Invalidations) Empty() bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.changes.items) == 0 && len(inv.creates.items) == 0 && len(inv.createAbove.items) == 0
}

// Merge appends everything recorded in other.
func (inv *Invalidations) Merge(other *Invalidations) {
	if other == nil || other == inv {
		return
	}
	changes := other.FileChanges()
	creates := other.FileCreates()
	above := other.FileCreatesAbove()

	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, p := range changes {
		inv.changes.add(p)
	}
	for _, p := range creates {
		inv.creates.add(p)
	}
	for _, a := range above {
		inv.createAbove.add(a)
	}
}

// Read calls fn and records its outcome for path: a change dependency when
// the file exists (even if it fails to parse), a create dependency when it
// does not. Other errors record nothing beyond the change.
func Read[T any](inv *Invalidations, path string, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		inv.InvalidateOnFileCreate(path)
	} else {
		inv.InvalidateOnFileChange(path)
	}
	return v, err
}

type orderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

func (s *orderedSet[T]) add(v T) {
	if s.seen == nil {
		s.seen = make(map[T]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet[T]) list() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
