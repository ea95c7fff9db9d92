// Copyright (C) 2025 Jeff Rose
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package resolver

import (
	"context"
	"fmt"
	"net"
	"time"
)

const (
	MinTimeout     = 500 * time.Millisecond
	MaxTimeout     = 30 * time.Second
	DefaultTimeout = 5 * time.Second
)

// Resolver maps a domain name to its network addresses.
type Resolver interface {
	LookupHost(ctx context.Context, domain string) ([]string, error)
}

// SystemResolver resolves through the operating system resolver. The
// address family and per-call timeout are fixed at construction; all
// workers share one instance.
type SystemResolver struct {
	resolver *net.Resolver
	network  string
	timeout  time.Duration
}

func NewSystemResolver(preferIPv4 bool, timeout time.Duration) *SystemResolver {
	network := "ip"
	if preferIPv4 {
		network = "ip4"
	}
	return &SystemResolver{
		resolver: net.DefaultResolver,
		network:  network,
		timeout:  clampTimeout(timeout),
	}
}

func (r *SystemResolver) LookupHost(ctx context.Context, domain string) ([]string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ips, err := r.resolver.LookupIP(lookupCtx, r.network, domain)
	if err != nil {
		return nil, fmt.Errorf("dns lookup failed: %w", err)
	}

	addrs := make([]string, len(ips))
	for i, ip := range ips {
		addrs[i] = ip.String()
	}
	return addrs, nil
}

// Network reports the address family passed to the underlying lookup,
// "ip4" when IPv4 preference is on and "ip" otherwise.
func (r *SystemResolver) Network() string {
	return r.network
}

func (r *SystemResolver) Timeout() time.Duration {
	return r.timeout
}

func clampTimeout(timeout time.Duration) time.Duration {
	switch {
	case timeout == 0:
		return DefaultTimeout
	case timeout < MinTimeout:
		return MinTimeout
	case timeout > MaxTimeout:
		return MaxTimeout
	}
	return timeout
}
