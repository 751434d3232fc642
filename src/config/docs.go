// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads ct-cert-checker settings from a JSON or YAML file,
// chosen by extension, and from the environment.
//
// Example YAML configuration:
//
//	roots:
//	  - roots/ca-cert.pem
//	precert: true
//	format: tree
package config
