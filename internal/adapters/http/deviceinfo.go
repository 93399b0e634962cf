package http

import (
	"net"
	"os"
	"runtime"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

// CollectDeviceInfo describes the current host.
func CollectDeviceInfo(appVersion string) domain.DeviceInfo {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return domain.DeviceInfo{
		Hostname:   host,
		OSName:     runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUArchs:   []string{runtime.GOARCH},
		IPAddress:  localIPv4(),
		NumCPU:     runtime.NumCPU(),
		AppVersion: appVersion,
	}
}

// localIPv4 returns the first non-loopback IPv4 address, or "".
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}
