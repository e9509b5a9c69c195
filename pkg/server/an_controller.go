// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"errors"
	"net/netip"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/nttcom/ancp/pkg/agent"
	"github.com/nttcom/ancp/pkg/packet/ancp"
)

// ANController reports the configured ports to the NAS and keeps the configuration it receives.
type ANController struct {
	an     *agent.AN
	ports  []PortConfig
	logger *zap.Logger

	mu             sync.Mutex
	lineProfiles   map[string]string
	mcastProfiles  map[string]agent.McastProfile
	lineMcastNames map[string]string
	groups         map[string][]netip.Addr
}

func NewANController(transport agent.Transport, ports []PortConfig, logger *zap.Logger) *ANController {
	c := &ANController{
		ports:          ports,
		logger:         logger.With(zap.String("controller", "an")),
		lineProfiles:   make(map[string]string),
		mcastProfiles:  make(map[string]agent.McastProfile),
		lineMcastNames: make(map[string]string),
		groups:         make(map[string][]netip.Addr),
	}
	c.an = agent.NewAN(transport, c, logger)
	return c
}

// Handle announces the configured ports once the adjacency is up and hands everything else to the agent.
func (c *ANController) Handle(peer netip.AddrPort, m *ancp.Message) error {
	if m.MessageType == ancp.MessageTypeAdjacency {
		return c.announce()
	}
	return c.an.Handle(peer, m)
}

func (c *ANController) announce() error {
	var errs []error
	for _, p := range c.ports {
		if err := c.an.SendPortUp(p.CircuitID, p.TagMode, p.UpRate, p.DownRate); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, g := range p.Joins {
			errs = append(errs, c.an.SendMcastAdmissionControl(p.CircuitID, ancp.CommandAdd, g))
		}
	}
	return errors.Join(errs...)
}

func (c *ANController) LineConfig(circuitID, profileName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineProfiles[circuitID] = profileName
	return nil
}

func (c *ANController) McastLineConfig(circuitID, profileName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineMcastNames[circuitID] = profileName
	return nil
}

func (c *ANController) McastProfile(profile agent.McastProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mcastProfiles[profile.Name] = profile
	return nil
}

func (c *ANController) McastCommand(circuitID string, code ancp.CommandCode, group netip.Addr) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups := c.groups[circuitID]
	switch code {
	case ancp.CommandAdd:
		if !slices.Contains(groups, group) {
			groups = append(groups, group)
		}
	case ancp.CommandDelete:
		if i := slices.Index(groups, group); i >= 0 {
			groups = slices.Delete(groups, i, i+1)
		}
	case ancp.CommandDeleteAll:
		groups = nil
	default:
		c.logger.Info("Ignore multicast command", zap.String("circuitID", circuitID), zap.Stringer("command", code))
		return nil
	}
	c.groups[circuitID] = groups
	return nil
}

// LineProfile returns the service profile the NAS assigned to the line.
func (c *ANController) LineProfile(circuitID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.lineProfiles[circuitID]
	return p, ok
}

// LineMcastProfile returns the multicast profile assigned to the line, if it was provisioned.
func (c *ANController) LineMcastProfile(circuitID string) (agent.McastProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.mcastProfiles[c.lineMcastNames[circuitID]]
	return p, ok
}

func (c *ANController) Groups(circuitID string) []netip.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.groups[circuitID])
}
