//go:build !windows

package main

// non-Windows terminals handle ANSI escapes natively
func enableANSIConsole() {}
