// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"strings"
)

// DefaultName is returned when the program name cannot be determined.
const DefaultName = "ct-cert-checker"

// ExecutableName returns the name the program was invoked as, for usage
// strings. See [BaseName].
func ExecutableName() string {
	if len(os.Args) == 0 {
		return DefaultName
	}
	return BaseName(os.Args[0])
}

// BaseName strips the directory and a trailing ".exe" from arg0.
//
// Both '/' and '\' count as separators on every platform, so a Windows path
// seen on a Unix host still yields the bare name:
//   - "/usr/local/bin/ct-cert-checker" → "ct-cert-checker"
//   - "C:\bin\ct-cert-checker.exe" → "ct-cert-checker"
//
// An empty result falls back to [DefaultName].
func BaseName(arg0 string) string {
	name := arg0[strings.LastIndexAny(arg0, `/\`)+1:]
	name = strings.TrimSuffix(name, ".exe")
	if name == "" {
		return DefaultName
	}
	return name
}
