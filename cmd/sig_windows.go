//go:build windows

package main

import "syscall"

// SIGTERM is the termination signal watched alongside os.Interrupt.
var SIGTERM = syscall.SIGTERM
