package frame

import (
	"fmt"
	"strings"
)

// Network tags the LPWAN a frame travelled on. Some frames are laid out
// differently per network.
type Network string

const (
	NetworkUnknown Network = "unknown"
	NetworkLoRa868 Network = "lora868"
	NetworkSigfox  Network = "sigfox"
)

// ParseNetwork maps a textual network name to a Network. An empty string is
// NetworkUnknown.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(NetworkUnknown):
		return NetworkUnknown, nil
	case string(NetworkLoRa868):
		return NetworkLoRa868, nil
	case string(NetworkSigfox):
		return NetworkSigfox, nil
	default:
		return NetworkUnknown, fmt.Errorf("unknown network %q (want lora868, sigfox or unknown)", s)
	}
}

// Known reports whether n names a concrete network.
func (n Network) Known() bool {
	return n == NetworkLoRa868 || n == NetworkSigfox
}

func (n Network) String() string {
	if n == "" {
		return string(NetworkUnknown)
	}
	return string(n)
}
