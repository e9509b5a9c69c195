// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/nttcom/ancp/pkg/packet/ancp"
	"gopkg.in/yaml.v3"
)

const (
	RoleNAS = "nas"
	RoleAN  = "an"
)

const (
	DefaultANCPPort  = "6068"
	DefaultKeepalive = 10 * time.Second
	// The adjacency timer field counts 100ms units in a single byte.
	MaxKeepalive = 255 * 100 * time.Millisecond
)

type ANCP struct {
	Address   string        `yaml:"address"`
	Port      string        `yaml:"port"`
	Keepalive time.Duration `yaml:"keepalive"`
}

type Grpc struct {
	Address string `yaml:"address"`
	Port    string `yaml:"port"`
}

type Log struct {
	Path  string `yaml:"path"`
	Name  string `yaml:"name"`
	Debug bool   `yaml:"debug"`
}

type Global struct {
	Role string    `yaml:"role"`
	Name ancp.Name `yaml:"name"`
	ANCP ANCP      `yaml:"ancp"`
	Grpc Grpc      `yaml:"grpc"`
	Log  Log       `yaml:"log"`
}

// Line is the configuration the NAS pushes to a line when it comes up.
type Line struct {
	CircuitID    string `yaml:"circuit-id"`
	Profile      string `yaml:"profile"`
	McastProfile string `yaml:"mcast-profile"`
}

type McastProfile struct {
	Name         string       `yaml:"name"`
	WhiteList    []netip.Addr `yaml:"white-list"`
	GreyList     []netip.Addr `yaml:"grey-list"`
	BlackList    []netip.Addr `yaml:"black-list"`
	WhiteListCAC bool         `yaml:"white-list-cac"`
	MRepCtlCAC   bool         `yaml:"mrepctl-cac"`
}

type NAS struct {
	Lines         []Line         `yaml:"lines"`
	McastProfiles []McastProfile `yaml:"mcast-profiles"`
}

// Port is a line the AN reports to the NAS once the adjacency is up.
type Port struct {
	CircuitID string       `yaml:"circuit-id"`
	TagMode   uint8        `yaml:"tag-mode"`
	UpRate    uint32       `yaml:"up-rate"`
	DownRate  uint32       `yaml:"down-rate"`
	Joins     []netip.Addr `yaml:"joins"`
}

type AN struct {
	Ports []Port `yaml:"ports"`
}

type Config struct {
	Global Global `yaml:"global"`
	NAS    NAS    `yaml:"nas"`
	AN     AN     `yaml:"an"`
}

func ReadConfigFile(configFile string) (Config, error) {
	c := new(Config)

	f, err := os.Open(configFile)
	if err != nil {
		return *c, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return *c, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}
	c.setDefaults()
	return *c, c.Validate()
}

func (c *Config) setDefaults() {
	if c.Global.ANCP.Port == "" {
		c.Global.ANCP.Port = DefaultANCPPort
	}
	if c.Global.ANCP.Keepalive == 0 {
		c.Global.ANCP.Keepalive = DefaultKeepalive
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Global.Role {
	case RoleNAS, RoleAN:
	default:
		errs = append(errs, fmt.Errorf("global.role must be %q or %q, got %q", RoleNAS, RoleAN, c.Global.Role))
	}
	if c.Global.ANCP.Keepalive < 100*time.Millisecond || c.Global.ANCP.Keepalive > MaxKeepalive {
		errs = append(errs, fmt.Errorf("global.ancp.keepalive must be between 100ms and %s", MaxKeepalive))
	}
	if c.Global.Role == RoleAN && c.Global.ANCP.Address == "" {
		errs = append(errs, errors.New("global.ancp.address must name the NAS for the an role"))
	}

	profiles := make(map[string]bool, len(c.NAS.McastProfiles))
	for _, p := range c.NAS.McastProfiles {
		if p.Name == "" {
			errs = append(errs, errors.New("nas.mcast-profiles: name is required"))
			continue
		}
		if profiles[p.Name] {
			errs = append(errs, fmt.Errorf("nas.mcast-profiles: duplicate profile %q", p.Name))
		}
		profiles[p.Name] = true
		if _, err := ancp.NewMcastServiceProfile(p.Name, p.WhiteList, p.GreyList, p.BlackList); err != nil {
			errs = append(errs, fmt.Errorf("nas.mcast-profiles[%s]: %w", p.Name, err))
		}
	}

	for _, l := range c.NAS.Lines {
		if l.CircuitID == "" {
			errs = append(errs, errors.New("nas.lines: circuit-id is required"))
		}
		if l.McastProfile != "" && !profiles[l.McastProfile] {
			errs = append(errs, fmt.Errorf("nas.lines[%s]: unknown mcast-profile %q", l.CircuitID, l.McastProfile))
		}
	}

	for _, p := range c.AN.Ports {
		if p.CircuitID == "" {
			errs = append(errs, errors.New("an.ports: circuit-id is required"))
		}
	}

	return errors.Join(errs...)
}
