// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package table

import (
	"net/netip"
	"slices"
	"sort"
	"sync"
)

type LineState int

const (
	LineStateDown LineState = iota
	LineStateUp
)

func (s LineState) String() string {
	if s == LineStateUp {
		return "up"
	}
	return "down"
}

// Line is an access line as last reported by its AN.
type Line struct {
	Peer      netip.AddrPort // AN the line belongs to
	CircuitID string
	UpRate    uint32
	DownRate  uint32
	TagMode   uint8
	State     LineState
	Profile   string
	Groups    []netip.Addr // multicast groups replicated onto the line
}

type LineDiff struct {
	Peer     netip.AddrPort
	UpRate   *uint32
	DownRate *uint32
	TagMode  *uint8
	State    LineState
	Profile  *string
}

func (l *Line) Update(diff LineDiff) {
	if diff.Peer.IsValid() {
		l.Peer = diff.Peer
	}
	if diff.UpRate != nil {
		l.UpRate = *diff.UpRate
	}
	if diff.DownRate != nil {
		l.DownRate = *diff.DownRate
	}
	if diff.TagMode != nil {
		l.TagMode = *diff.TagMode
	}
	if diff.Profile != nil {
		l.Profile = *diff.Profile
	}
	l.State = diff.State
	if l.State == LineStateDown {
		l.Groups = nil
	}
}

// LineTable indexes lines by circuit id. It is safe for concurrent use.
type LineTable struct {
	mu    sync.RWMutex
	lines map[string]*Line
}

func NewLineTable() *LineTable {
	return &LineTable{
		lines: make(map[string]*Line),
	}
}

// Update applies diff to the line, creating it if needed, and returns a copy of the result.
func (t *LineTable) Update(circuitID string, diff LineDiff) Line {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.lines[circuitID]
	if !ok {
		l = &Line{CircuitID: circuitID}
		t.lines[circuitID] = l
	}
	l.Update(diff)
	return l.clone()
}

func (t *LineTable) Get(circuitID string) (Line, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	l, ok := t.lines[circuitID]
	if !ok {
		return Line{}, false
	}
	return l.clone(), true
}

// Join records group on the line. It reports false if the line is unknown or already carries group.
func (t *LineTable) Join(circuitID string, group netip.Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.lines[circuitID]
	if !ok || slices.Contains(l.Groups, group) {
		return false
	}
	l.Groups = append(l.Groups, group)
	return true
}

// Leave removes group from the line. An invalid group removes every group.
func (t *LineTable) Leave(circuitID string, group netip.Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.lines[circuitID]
	if !ok {
		return false
	}
	if !group.IsValid() {
		left := len(l.Groups) > 0
		l.Groups = nil
		return left
	}
	i := slices.Index(l.Groups, group)
	if i < 0 {
		return false
	}
	l.Groups = slices.Delete(l.Groups, i, i+1)
	return true
}

// DeletePeer forgets every line of peer and returns how many were removed.
func (t *LineTable) DeletePeer(peer netip.AddrPort) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, l := range t.lines {
		if l.Peer == peer {
			delete(t.lines, id)
			n++
		}
	}
	return n
}

// List returns a snapshot of every line sorted by circuit id.
func (t *LineTable) List() []Line {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines := make([]Line, 0, len(t.lines))
	for _, l := range t.lines {
		lines = append(lines, l.clone())
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].CircuitID < lines[j].CircuitID
	})
	return lines
}

func (l *Line) clone() Line {
	c := *l
	c.Groups = slices.Clone(l.Groups)
	return c
}
