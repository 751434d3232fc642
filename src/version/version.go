// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package version holds the ct-cert-checker release version.
package version

// Version is the current release. Override it at build time with
//
//	-ldflags "-X github.com/H0llyW00dzZ/ct-cert-checker/src/version.Version=v0.1.0"
var Version = "0.1.0"
