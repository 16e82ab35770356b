// Package sysinfo collects the platform metadata the server wants at
// registration time and passes through on uninstall requests.
package sysinfo

import (
	"net"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/focusguard/agent/internal/logging"
)

var log = logging.L("sysinfo")

// Info identifies this installation to the server.
type Info struct {
	Hostname     string
	OSType       string
	OSVersion    string
	Architecture string
	MACAddress   string
	InstallPath  string
}

// Collect gathers host identity. Individual probes failing produce partial
// info, not an error; the server treats all of this as opaque metadata.
func Collect() *Info {
	info := &Info{
		OSType:       runtime.GOOS,
		Architecture: runtime.GOARCH,
		MACAddress:   primaryMAC(),
	}

	if hi, err := host.Info(); err != nil {
		log.Warn("host info unavailable", "error", err)
		if hostname, herr := os.Hostname(); herr == nil {
			info.Hostname = hostname
		}
	} else {
		info.Hostname = hi.Hostname
		info.OSVersion = hi.PlatformVersion
		if hi.Platform != "" {
			info.OSType = hi.Platform
		}
	}

	if exe, err := os.Executable(); err != nil {
		log.Warn("executable path unavailable", "error", err)
	} else {
		info.InstallPath = exe
	}

	return info
}

// primaryMAC returns the hardware address of the first non-loopback
// interface that has one.
func primaryMAC() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn("network interfaces unavailable", "error", err)
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return ""
}

// NewInstallationKey generates a key for installations the installer did
// not provision one for.
func NewInstallationKey() string {
	return uuid.NewString()
}

// Uptime reports how long the host has been up.
func Uptime() (time.Duration, error) {
	secs, err := host.Uptime()
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
