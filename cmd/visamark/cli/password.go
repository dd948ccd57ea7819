// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/visamark/visamark/lib/secret"
)

// ReadPassword prompts for a password on the terminal with echo
// disabled, falling back to a line from stdin when there is no
// terminal.
func ReadPassword(prompt string) (string, error) {
	return readPassword(prompt, "")
}

// readPassword reads a password from the given file path, or prompts
// on the terminal when path is empty or "-". The prompt disables echo.
func readPassword(prompt, path string) (string, error) {
	if path != "" && path != "-" {
		return secret.ReadFromPath(path)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// No terminal — fall back to reading a line from stdin, which
		// supports piping the password in scripts.
		return secret.ReadFromPath("-")
	}

	fmt.Fprintf(os.Stderr, "%s", prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := string(raw)
	secret.Zero(raw)
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	return password, nil
}
