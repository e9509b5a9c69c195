// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"

	"go.uber.org/zap"

	"github.com/nttcom/ancp/internal/pkg/table"
	"github.com/nttcom/ancp/pkg/agent"
	"github.com/nttcom/ancp/pkg/packet/ancp"
)

// NASController applies the configured line and multicast policy to the events reported by ANs.
type NASController struct {
	agent.UnimplementedNASHandler

	nas      *agent.NAS
	lines    map[string]LineConfig
	profiles map[string]agent.McastProfile
	table    *table.LineTable
	logger   *zap.Logger
}

func NewNASController(transport agent.Transport, lines []LineConfig, profiles []agent.McastProfile, logger *zap.Logger) *NASController {
	c := &NASController{
		lines:    make(map[string]LineConfig, len(lines)),
		profiles: make(map[string]agent.McastProfile, len(profiles)),
		table:    table.NewLineTable(),
		logger:   logger.With(zap.String("controller", "nas")),
	}
	for _, l := range lines {
		c.lines[l.CircuitID] = l
	}
	for _, p := range profiles {
		c.profiles[p.Name] = p
	}
	c.nas = agent.NewNAS(transport, c, logger)
	return c
}

func (c *NASController) Handle(peer netip.AddrPort, m *ancp.Message) error {
	return c.nas.Handle(peer, m)
}

func (c *NASController) Lines() []table.Line {
	return c.table.List()
}

func (c *NASController) PeerDown(peer netip.AddrPort) {
	n := c.table.DeletePeer(peer)
	c.logger.Info("Forget lines of peer", zap.String("session", peer.String()), zap.Int("lines", n))
}

// NewAdjacency provisions every configured multicast service profile on the new AN.
func (c *NASController) NewAdjacency(peer netip.AddrPort) error {
	var errs []error
	for _, name := range sortedKeys(c.profiles) {
		if err := c.nas.SendMcastServiceProfile(peer, c.profiles[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *NASController) PortUp(peer netip.AddrPort, circuitID string, upRate, downRate uint32, tagMode uint8) error {
	if circuitID == "" {
		return fmt.Errorf("%w: port up without circuit id", ancp.ErrMalformedMessage)
	}

	cfg, configured := c.lines[circuitID]
	diff := table.LineDiff{
		Peer:     peer,
		UpRate:   &upRate,
		DownRate: &downRate,
		TagMode:  &tagMode,
		State:    table.LineStateUp,
	}
	if configured {
		diff.Profile = &cfg.Profile
	}
	line := c.table.Update(circuitID, diff)
	c.logger.Info("Line up", zap.String("circuitID", line.CircuitID), zap.Uint32("upRate", line.UpRate), zap.Uint32("downRate", line.DownRate))

	if !configured {
		return nil
	}
	var errs []error
	if cfg.Profile != "" {
		errs = append(errs, c.nas.SendPortConfigCommand(peer, circuitID, cfg.Profile))
	}
	if cfg.McastProfile != "" {
		errs = append(errs, c.nas.SendMcastPortConfigCommand(peer, circuitID, cfg.McastProfile))
	}
	return errors.Join(errs...)
}

func (c *NASController) PortDown(peer netip.AddrPort, circuitID string) error {
	if circuitID == "" {
		return fmt.Errorf("%w: port down without circuit id", ancp.ErrMalformedMessage)
	}
	c.table.Update(circuitID, table.LineDiff{Peer: peer, State: table.LineStateDown})
	c.logger.Info("Line down", zap.String("circuitID", circuitID))
	return nil
}

// Admission replicates a group onto a line when the line's multicast profile permits it.
func (c *NASController) Admission(peer netip.AddrPort, circuitID string, group netip.Addr, join bool) error {
	line, ok := c.table.Get(circuitID)
	if !ok || line.State != table.LineStateUp {
		c.logger.Info("Reject admission on unknown line", zap.String("circuitID", circuitID), zap.Stringer("group", group))
		return nil
	}

	if !join {
		if !c.table.Leave(circuitID, group) {
			return nil
		}
		code := ancp.CommandDelete
		if !group.IsValid() {
			code = ancp.CommandDeleteAll
		}
		return c.nas.SendMcastCommand(peer, circuitID, code, group)
	}

	if !c.admits(circuitID, group) {
		c.logger.Info("Reject admission", zap.String("circuitID", circuitID), zap.Stringer("group", group))
		return nil
	}
	if !c.table.Join(circuitID, group) {
		return nil
	}
	return c.nas.SendMcastCommand(peer, circuitID, ancp.CommandAdd, group)
}

// admits reports whether group is on the white or grey list of the line's multicast profile.
func (c *NASController) admits(circuitID string, group netip.Addr) bool {
	cfg, ok := c.lines[circuitID]
	if !ok {
		return false
	}
	p, ok := c.profiles[cfg.McastProfile]
	if !ok || slices.Contains(p.BlackList, group) {
		return false
	}
	return slices.Contains(p.WhiteList, group) || slices.Contains(p.GreyList, group)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
