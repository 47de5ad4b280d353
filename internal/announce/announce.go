// Package announce advertises the controller on the local network over
// mDNS once it is connected in client mode, so phones and dashboards can
// find it without knowing the DHCP-assigned address.
package announce

import (
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/logging"
)

const (
	// ServiceType is the advertised mDNS service type.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// ServicePort is the advertised HTTP port.
	ServicePort = 80

	// instancePrefix namespaces controller instances on the network.
	instancePrefix = "heatsys-"
)

// Announcer holds one active mDNS registration.
type Announcer struct {
	server *zeroconf.Server
}

// Start registers the controller under "heatsys-<id>". The id is
// typically the last octets of the station IP; dots are flattened so the
// instance name stays a single label.
func Start(id string) (*Announcer, error) {
	instance := instancePrefix + strings.ReplaceAll(id, ".", "-")

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		ServiceDomain,
		ServicePort,
		[]string{"role=heating-controller"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("mDNS service registered",
		zap.String("instance", instance),
		zap.String("type", ServiceType),
	)
	return &Announcer{server: server}, nil
}

// Stop withdraws the registration. Safe to call on a nil Announcer.
func (a *Announcer) Stop() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	logging.Info("mDNS service withdrawn")
}
