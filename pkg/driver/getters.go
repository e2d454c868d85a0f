package driver

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/netconfd/panos-driver/pkg/driver/types"
	"github.com/netconfd/panos-driver/pkg/utils"
)

// subifPattern matches the interface names the device reports without a
// hardware section.
var subifPattern = regexp.MustCompile(`(ethernet\d+/\d+\.\d+)|(ae\d+\.\d+)|(loopback\.)|(tunnel\.)|(vlan\.)`)

// interfaceList collects the names of all interfaces known to the device.
func (d *Driver) interfaceList(ctx context.Context) ([]string, error) {
	resp, err := d.api.Op(ctx, "<show><interface>all</interface></show>")
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return nil, err
	}
	result := resp.Result()
	if result == nil {
		return nil, fmt.Errorf("interface listing carries no result")
	}

	seen := map[string]struct{}{}
	for _, e := range result.FindElements(".//entry") {
		if name := utils.Text(e, "name"); name != "" {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetFacts returns the device identity from the system info query.
func (d *Driver) GetFacts(ctx context.Context) (*types.Facts, error) {
	resp, err := d.api.Op(ctx, "<show><system><info></info></system></show>")
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return nil, err
	}
	result := resp.Result()
	if result == nil {
		return nil, fmt.Errorf("system info carries no result")
	}
	system := result.SelectElement("system")
	if system == nil {
		return nil, fmt.Errorf("system info carries no system element")
	}

	interfaces, err := d.interfaceList(ctx)
	if err != nil {
		return nil, err
	}

	return &types.Facts{
		Hostname:      utils.Text(system, "hostname"),
		FQDN:          "N/A",
		Vendor:        "Palo Alto Networks",
		Model:         utils.Text(system, "model"),
		SerialNumber:  utils.Text(system, "serial"),
		OSVersion:     utils.Text(system, "sw-version"),
		Uptime:        parseUptime(utils.Text(system, "uptime")),
		InterfaceList: interfaces,
	}, nil
}

// parseUptime converts the device's uptime text ("44 days, 9:16:47" or a
// bare "9:16:47") to seconds.
func parseUptime(s string) int64 {
	var total int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.Contains(part, "day"):
			fields := strings.Fields(part)
			if len(fields) > 0 {
				if days, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
					total += days * 24 * 3600
				}
			}
		case strings.Contains(part, ":"):
			mult := int64(3600)
			for _, f := range strings.Split(part, ":") {
				v, err := strconv.ParseInt(f, 10, 64)
				if err != nil {
					continue
				}
				total += v * mult
				mult /= 60
			}
		}
	}
	return total
}

// GetLLDPNeighbors returns the LLDP neighbor table keyed by local interface.
func (d *Driver) GetLLDPNeighbors(ctx context.Context) (map[string][]types.LLDPNeighbor, error) {
	resp, err := d.api.Op(ctx, "<show><lldp><neighbors>all</neighbors></lldp></show>")
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return nil, err
	}
	result := resp.Result()
	if result == nil {
		return nil, fmt.Errorf("lldp neighbor listing carries no result")
	}

	neighbors := map[string][]types.LLDPNeighbor{}
	for _, entry := range result.SelectElements("entry") {
		local := entry.SelectAttrValue("name", "")
		if local == "" {
			continue
		}
		if _, ok := neighbors[local]; !ok {
			neighbors[local] = []types.LLDPNeighbor{}
		}
		remotes := entry.SelectElement("neighbors")
		if remotes == nil {
			continue
		}
		for _, n := range remotes.SelectElements("entry") {
			neighbors[local] = append(neighbors[local], types.LLDPNeighbor{
				Hostname: utils.Text(n, "system-name"),
				Port:     utils.Text(n, "port-id"),
			})
		}
	}
	return neighbors, nil
}

// routeProtocolFlags maps the device's route flag letters to protocol names.
var routeProtocolFlags = []struct {
	flag     string
	protocol string
}{
	{"C", "connect"},
	{"S", "static"},
	{"R", "rip"},
	{"O", "ospf"},
	{"B", "bgp"},
	{"H", "host"},
}

// GetRouteTo returns routing table entries keyed by destination, optionally
// narrowed to one destination and one protocol.
func (d *Driver) GetRouteTo(ctx context.Context, destination, protocol string) (map[string][]types.Route, error) {
	var filter string
	if protocol != "" {
		filter += fmt.Sprintf("<type>%s</type>", protocol)
	}
	if destination != "" {
		filter += fmt.Sprintf("<destination>%s</destination>", destination)
	}
	cmd := fmt.Sprintf("<show><routing><route>%s</route></routing></show>", filter)

	resp, err := d.api.Op(ctx, cmd)
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return nil, err
	}
	result := resp.Result()
	if result == nil {
		return nil, fmt.Errorf("route listing carries no result")
	}

	routes := map[string][]types.Route{}
	for _, entry := range result.SelectElements("entry") {
		dest := utils.Text(entry, "destination")
		if dest == "" {
			continue
		}
		r := types.DefaultRoute()
		flags := utils.Text(entry, "flags")
		r.CurrentActive = strings.Contains(flags, "A")
		for _, fp := range routeProtocolFlags {
			if strings.Contains(flags, fp.flag) {
				r.Protocol = fp.protocol
			}
		}
		if v := utils.Text(entry, "age"); v != "" {
			r.Age = utils.Int(entry, "age", r.Age)
		}
		if v := utils.Text(entry, "nexthop"); v != "" {
			r.NextHop = v
		}
		if v := utils.Text(entry, "interface"); v != "" {
			r.OutgoingInterface = v
		}
		if v := utils.Text(entry, "metric"); v != "" {
			r.Preference = utils.Int(entry, "metric", r.Preference)
		}
		if v := utils.Text(entry, "virtual-router"); v != "" {
			r.RoutingTable = v
		}
		routes[dest] = append(routes[dest], r)
	}
	return routes, nil
}

// GetInterfaces returns the state of every interface. Sub-interfaces carry
// the default record since the device reports no hardware section for them.
func (d *Driver) GetInterfaces(ctx context.Context) (map[string]types.Interface, error) {
	names, err := d.interfaceList(ctx)
	if err != nil {
		return nil, err
	}

	interfaces := make(map[string]types.Interface, len(names))
	for _, name := range names {
		resp, err := d.api.Op(ctx, fmt.Sprintf("<show><interface>%s</interface></show>", name))
		if err == nil {
			err = resp.Err()
		}
		if err != nil {
			return nil, err
		}
		result := resp.Result()
		if result == nil {
			return nil, fmt.Errorf("interface %s query carries no result", name)
		}
		hw := result.SelectElement("hw")
		if hw == nil {
			if subifPattern.MatchString(name) {
				interfaces[name] = types.DefaultSubinterface()
				continue
			}
			return nil, fmt.Errorf("interface %s carries no hw section", name)
		}

		intf, err := parseInterface(name, hw)
		if err != nil {
			return nil, err
		}
		interfaces[name] = intf
	}
	return interfaces, nil
}

func parseInterface(name string, hw *etree.Element) (types.Interface, error) {
	intf := types.Interface{
		LastFlapped: -1.0,
		Description: "N/A",
	}
	intf.IsUp = utils.Text(hw, "state") == "up"

	switch confState := utils.Text(hw, "state_c"); confState {
	case "down":
		intf.IsEnabled = false
	case "up", "auto":
		intf.IsEnabled = true
	default:
		return intf, fmt.Errorf("unknown configured state %q for interface %s", confState, name)
	}

	switch speed := utils.Text(hw, "speed"); speed {
	case "", "[n/a]", "unknown":
		intf.Speed = 0
	default:
		v, err := strconv.Atoi(speed)
		if err != nil {
			return intf, fmt.Errorf("unparsable speed %q for interface %s", speed, name)
		}
		intf.Speed = v
	}

	intf.MACAddress = standardizeMAC(utils.Text(hw, "mac"))
	return intf, nil
}

// standardizeMAC normalizes a hardware address to the canonical lowercase
// colon-separated form; unparsable input is returned unchanged.
func standardizeMAC(s string) string {
	if s == "" {
		return ""
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return s
	}
	return hw.String()
}

// GetInterfacesIP returns the addresses configured per interface. The
// primary IPv4 address sits in <ip>, secondaries in <addr>, all IPv6
// addresses in <addr6>; the latter two use the one-or-many member encoding.
func (d *Driver) GetInterfacesIP(ctx context.Context) (map[string]types.InterfaceIP, error) {
	resp, err := d.api.Op(ctx, "<show><interface>all</interface></show>")
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return nil, err
	}
	result := resp.Result()
	if result == nil {
		return nil, fmt.Errorf("interface listing carries no result")
	}
	ifnet := result.SelectElement("ifnet")
	if ifnet == nil {
		return nil, fmt.Errorf("interface listing carries no ifnet section")
	}

	out := map[string]types.InterfaceIP{}
	for _, entry := range ifnet.SelectElements("entry") {
		name := utils.Text(entry, "name")
		if name == "" {
			continue
		}
		info := types.InterfaceIP{}

		if v4 := utils.Text(entry, "ip"); v4 != "" && v4 != "N/A" {
			addIP(&info.IPv4, v4)
		}
		for _, v4 := range utils.Members(entry, "addr") {
			addIP(&info.IPv4, v4)
		}
		for _, v6 := range utils.Members(entry, "addr6") {
			addIP(&info.IPv6, v6)
		}

		if info.IPv4 != nil || info.IPv6 != nil {
			out[name] = info
		}
	}
	return out, nil
}

func addIP(m *map[string]types.PrefixEntry, cidr string) {
	addr, prefix, ok := strings.Cut(cidr, "/")
	if !ok {
		return
	}
	length, err := strconv.Atoi(prefix)
	if err != nil {
		return
	}
	if *m == nil {
		*m = map[string]types.PrefixEntry{}
	}
	(*m)[addr] = types.PrefixEntry{PrefixLength: length}
}
