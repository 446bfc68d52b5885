// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package network

import (
	"fmt"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// linkUp sets the link administratively up via netlink.
//
// Bringing up a link that is already up is a no-op in the kernel, so the
// operation is idempotent.
func linkUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("find link %s: %w", name, err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("set link %s up: %w", name, err)
	}

	return nil
}

// LoopbackUp brings the loopback interface up.
//
// The kernel configures the address automatically. Netlink is avoided here
// so the function works in the most minimal environments.
func LoopbackUp() error {
	// Any socket can be used for sending ioctls.
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	defer unix.Close(sock)

	ifReq, err := unix.NewIfreq("lo")
	if err != nil {
		return fmt.Errorf("interface request: %w", err)
	}

	ifReq.SetUint16(unix.IFF_UP)

	if err := unix.IoctlIfreq(sock, unix.SIOCSIFFLAGS, ifReq); err != nil {
		return fmt.Errorf("ioctl: %w", err)
	}

	return nil
}
