// Package types holds the flat records returned by the driver's operational
// getters.
package types

// Facts describes the device identity.
type Facts struct {
	Hostname      string   `json:"hostname"`
	FQDN          string   `json:"fqdn"`
	Vendor        string   `json:"vendor"`
	Model         string   `json:"model"`
	SerialNumber  string   `json:"serial_number"`
	OSVersion     string   `json:"os_version"`
	Uptime        int64    `json:"uptime"`
	InterfaceList []string `json:"interface_list"`
}

// Interface is the state of one interface.
type Interface struct {
	IsUp        bool    `json:"is_up"`
	IsEnabled   bool    `json:"is_enabled"`
	Speed       int     `json:"speed"`
	LastFlapped float64 `json:"last_flapped"`
	MACAddress  string  `json:"mac_address"`
	MTU         int     `json:"mtu"`
	Description string  `json:"description"`
}

// DefaultSubinterface is the record used for sub-interfaces, for which the
// device reports no hardware section. Returned by value so callers always
// start from a fresh copy.
func DefaultSubinterface() Interface {
	return Interface{
		IsUp:        true,
		IsEnabled:   true,
		Speed:       0,
		LastFlapped: -1.0,
		MTU:         0,
		Description: "N/A",
	}
}

// LLDPNeighbor is one neighbor seen on a local interface.
type LLDPNeighbor struct {
	Hostname string `json:"hostname"`
	Port     string `json:"port"`
}

// Route is one routing table entry.
type Route struct {
	CurrentActive      bool              `json:"current_active"`
	LastActive         bool              `json:"last_active"`
	Age                int               `json:"age"`
	NextHop            string            `json:"next_hop"`
	Protocol           string            `json:"protocol"`
	OutgoingInterface  string            `json:"outgoing_interface"`
	Preference         int               `json:"preference"`
	InactiveReason     string            `json:"inactive_reason"`
	RoutingTable       string            `json:"routing_table"`
	SelectedNextHop    bool              `json:"selected_next_hop"`
	ProtocolAttributes map[string]string `json:"protocol_attributes"`
}

// DefaultRoute is the base record parsed route fields are merged over.
func DefaultRoute() Route {
	return Route{
		CurrentActive:      false,
		LastActive:         false,
		Age:                -1,
		Preference:         -1,
		RoutingTable:       "default",
		ProtocolAttributes: map[string]string{},
	}
}

// PrefixEntry carries the prefix length of one address.
type PrefixEntry struct {
	PrefixLength int `json:"prefix_length"`
}

// InterfaceIP holds the addresses configured on one interface, keyed by
// address without the prefix.
type InterfaceIP struct {
	IPv4 map[string]PrefixEntry `json:"ipv4,omitempty"`
	IPv6 map[string]PrefixEntry `json:"ipv6,omitempty"`
}
