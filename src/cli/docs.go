// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the Cobra-based command line for the CT certificate
// chain checker. It loads trusted certificates from flags, a config file and
// the environment, checks one chain or precertificate chain, and renders the
// per-entry result as text, an ASCII tree, a markdown table or JSON.
package cli
