// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-style helpers that behave the same on every
// operating system.
//
// Use in cobra command definitions:
//
//	rootCmd := &cobra.Command{
//	    Use: posix.ExecutableName() + " [CHAIN_FILE]",
//	}
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
