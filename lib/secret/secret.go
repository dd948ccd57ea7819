// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides small helpers for handling sensitive byte
// material such as passwords and tokens read from disk or a terminal.
package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// Zero overwrites the slice with zeros. Call after the sensitive
// content has been handed off, so the bytes do not linger in buffers
// that outlive their use.
func Zero(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// ReadFromPath reads a secret from a file path, or from the first line
// of stdin if path is "-". Leading and trailing whitespace is trimmed.
// Returns an error if the source is empty after trimming.
func ReadFromPath(path string) (string, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("reading stdin: %w", err)
			}
			return "", fmt.Errorf("stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return "", err
		}
	}

	trimmed := string(bytes.TrimSpace(data))
	Zero(data)
	if trimmed == "" {
		return "", fmt.Errorf("secret is empty")
	}
	return trimmed, nil
}
