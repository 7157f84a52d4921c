//go:build windows

package main

import (
	"os"
)

// listenForKeyboard reads keys from stdin until c asks to quit.
// Input stays line buffered on Windows.
func listenForKeyboard(c *console) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if c.handleKey(buf[0]) {
			return
		}
	}
}
