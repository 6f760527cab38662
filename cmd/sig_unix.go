//go:build !windows

package main

import "golang.org/x/sys/unix"

// SIGTERM is the termination signal watched alongside os.Interrupt.
var SIGTERM = unix.SIGTERM
