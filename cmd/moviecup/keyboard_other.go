//go:build !linux && !darwin && !windows

package main

// listenForKeyboard is unsupported here and returns immediately
func listenForKeyboard(c *console) {}
