// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/nttcom/ancp/internal/config"
	"github.com/nttcom/ancp/internal/pkg/version"
	"github.com/nttcom/ancp/pkg/agent"
	"github.com/nttcom/ancp/pkg/logger"
	"github.com/nttcom/ancp/pkg/server"
)

type Flags struct {
	ConfigFile string
	Version    bool
}

func main() {
	f := new(Flags)
	flag.StringVar(&f.ConfigFile, "f", "ancpd.yaml", "Specify a configuration file")
	flag.BoolVar(&f.Version, "version", false, "Print the version and exit")
	flag.Parse()

	if f.Version {
		fmt.Println(version.Banner("ancpd"))
		return
	}

	c, err := config.ReadConfigFile(f.ConfigFile)
	if err != nil {
		log.Panic(err)
	}
	if err := os.MkdirAll(c.Global.Log.Path, 0755); err != nil {
		log.Panic(err)
	}
	fp, err := os.OpenFile(filepath.Join(c.Global.Log.Path, c.Global.Log.Name), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Panic(err)
	}
	defer fp.Close()

	logger := logger.LogInit(fp, c.Global.Log.Debug)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := newOptions(c)
	s := server.NewServer(o, logger)

	var d server.Dispatcher
	switch c.Global.Role {
	case config.RoleNAS:
		d = server.NewNASController(s, lineConfigs(c.NAS), mcastProfiles(c.NAS), logger)
	case config.RoleAN:
		d = server.NewANController(s, portConfigs(c.AN), logger)
	}

	logger.Info("Start ancpd", zap.String("version", version.Version()), zap.String("role", c.Global.Role))
	if err := s.Serve(ctx, d); err != nil {
		logger.Panic("Failed to serve", zap.Error(err))
	}
	logger.Info("Stop ancpd")
}

func newOptions(c config.Config) *server.Options {
	return &server.Options{
		Role:      c.Global.Role,
		ANCPAddr:  c.Global.ANCP.Address,
		ANCPPort:  c.Global.ANCP.Port,
		GrpcAddr:  c.Global.Grpc.Address,
		GrpcPort:  c.Global.Grpc.Port,
		Name:      c.Global.Name,
		Keepalive: c.Global.ANCP.Keepalive,
	}
}

func lineConfigs(c config.NAS) []server.LineConfig {
	lines := make([]server.LineConfig, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, server.LineConfig{
			CircuitID:    l.CircuitID,
			Profile:      l.Profile,
			McastProfile: l.McastProfile,
		})
	}
	return lines
}

func mcastProfiles(c config.NAS) []agent.McastProfile {
	profiles := make([]agent.McastProfile, 0, len(c.McastProfiles))
	for _, p := range c.McastProfiles {
		profiles = append(profiles, agent.McastProfile{
			Name:         p.Name,
			WhiteList:    p.WhiteList,
			GreyList:     p.GreyList,
			BlackList:    p.BlackList,
			WhiteListCAC: p.WhiteListCAC,
			MRepCtlCAC:   p.MRepCtlCAC,
		})
	}
	return profiles
}

func portConfigs(c config.AN) []server.PortConfig {
	ports := make([]server.PortConfig, 0, len(c.Ports))
	for _, p := range c.Ports {
		ports = append(ports, server.PortConfig{
			CircuitID: p.CircuitID,
			TagMode:   p.TagMode,
			UpRate:    p.UpRate,
			DownRate:  p.DownRate,
			Joins:     p.Joins,
		})
	}
	return ports
}
