// Package navigation tracks where a user is in the bank hierarchy.
package navigation

import (
	"errors"
	"fmt"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// State names the two shapes a cursor can be in
type State string

const (
	// StateRoot means the forest itself is displayed
	StateRoot State = "root"
	// StateDescended means some bank is open; the trail is non-empty
	StateDescended State = "descended"
)

// ErrIndexOutOfRange is returned by JumpTo for an index outside the trail
var ErrIndexOutOfRange = errors.New("breadcrumb index out of range")

// Cursor holds the open bank and the breadcrumb trail leading to it.
// The current bank is always the last trail entry, so the two cannot drift.
//
// A Cursor never sees the tree. Callers that delete banks must check
// Contains and call ResetToRoot themselves. Not safe for concurrent use.
type Cursor struct {
	trail []valueobjects.Breadcrumb
}

// Snapshot is the persisted form of a cursor
type Snapshot struct {
	Trail []valueobjects.Breadcrumb `json:"trail" yaml:"trail"`
}

// NewCursor returns a cursor at the forest root
func NewCursor() *Cursor {
	return &Cursor{}
}

// Restore rebuilds a cursor from a snapshot. The trail is not checked against
// any forest here.
func Restore(s Snapshot) (*Cursor, error) {
	c := NewCursor()
	for i, crumb := range s.Trail {
		if err := c.Descend(crumb.ID, crumb.Name); err != nil {
			return nil, fmt.Errorf("snapshot entry %d: %w", i, err)
		}
	}
	return c, nil
}

// Snapshot captures the trail
func (c *Cursor) Snapshot() Snapshot {
	return Snapshot{Trail: c.Trail()}
}

// State reports Root or Descended
func (c *Cursor) State() State {
	if len(c.trail) == 0 {
		return StateRoot
	}
	return StateDescended
}

// AtRoot reports whether no bank is open
func (c *Cursor) AtRoot() bool {
	return len(c.trail) == 0
}

// Current returns the open bank id; ok is false at the root.
func (c *Cursor) Current() (valueobjects.BankID, bool) {
	if len(c.trail) == 0 {
		return "", false
	}
	return c.trail[len(c.trail)-1].ID, true
}

// Depth is the trail length
func (c *Cursor) Depth() int {
	return len(c.trail)
}

// Trail returns a copy of the breadcrumbs, root-adjacent first
func (c *Cursor) Trail() []valueobjects.Breadcrumb {
	out := make([]valueobjects.Breadcrumb, len(c.trail))
	copy(out, c.trail)
	return out
}

// Path returns the trail ids; it addresses the open bank itself.
func (c *Cursor) Path() valueobjects.BankPath {
	path := make(valueobjects.BankPath, len(c.trail))
	for i, crumb := range c.trail {
		path[i] = crumb.ID
	}
	return path
}

// Contains reports whether id is anywhere in the trail
func (c *Cursor) Contains(id valueobjects.BankID) bool {
	return c.indexOf(id) >= 0
}

// Descend opens a bank below the current one
func (c *Cursor) Descend(id valueobjects.BankID, name string) error {
	if id.IsZero() {
		return errors.New("cannot descend into a bank without an id")
	}
	c.trail = append(c.trail, valueobjects.Breadcrumb{ID: id, Name: name})
	return nil
}

// JumpTo truncates the trail so that index is the last entry. -1 resets to root.
func (c *Cursor) JumpTo(index int) error {
	if index == -1 {
		c.ResetToRoot()
		return nil
	}
	if index < -1 || index >= len(c.trail) {
		return fmt.Errorf("%w: %d (trail length %d)", ErrIndexOutOfRange, index, len(c.trail))
	}
	c.trail = c.trail[:index+1]
	return nil
}

// ResetToRoot clears the trail
func (c *Cursor) ResetToRoot() {
	c.trail = nil
}

// RenameInTrail updates the name of id in place. Trail length and the current
// bank are untouched. It reports whether id was in the trail.
func (c *Cursor) RenameInTrail(id valueobjects.BankID, name string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.trail[i].Name = name
	return true
}

func (c *Cursor) indexOf(id valueobjects.BankID) int {
	for i, crumb := range c.trail {
		if crumb.ID == id {
			return i
		}
	}
	return -1
}
