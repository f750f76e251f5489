// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"fmt"
	"net"
	"strings"
)

// parseAllowed reads an allow list entry as a CIDR range or a single IP address.
func parseAllowed(raw string) (*net.IPNet, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		_, ipnet, err := net.ParseCIDR(raw)
		return ipnet, err
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return nil, fmt.Errorf("invalid allowed IP %q", raw)
	}
	if v4 := ip.To4(); v4 != nil {
		return &net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}

// rejectOutboundIPRange resolves hostname (with an optional port) and returns an error
// unless every address it resolves to falls inside allowedIPs. An empty list only
// requires the hostname to resolve.
func rejectOutboundIPRange(allowedIPs []string, hostname string) error {
	if host, _, err := net.SplitHostPort(hostname); err == nil {
		hostname = host
	}
	addrs, err := net.LookupIP(hostname)
	if len(addrs) == 0 || err != nil {
		return fmt.Errorf("unable to resolve (found %d) %s: %v", len(addrs), hostname, err)
	}
	if len(allowedIPs) == 0 {
		return nil
	}

	var allowed []*net.IPNet
	for i := range allowedIPs {
		ipnet, err := parseAllowed(allowedIPs[i])
		if err != nil {
			return err
		}
		allowed = append(allowed, ipnet)
	}

next:
	for _, addr := range addrs {
		for _, ipnet := range allowed {
			if ipnet.Contains(addr) {
				continue next
			}
		}
		return fmt.Errorf("%s is not allowed", addr.String())
	}
	return nil
}
