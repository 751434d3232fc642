// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// ct-cert-checker checks that a certificate chain, or a Certificate
// Transparency precertificate chain, is signed link by link and ends at a
// trusted certificate.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/ct-cert-checker/cmd/ct-cert-checker@latest
//
// # Usage
//
//	ct-cert-checker [FLAGS] CHAIN_FILE
//
// CHAIN_FILE holds the chain leaf first, as PEM, concatenated DER or PKCS#7.
// Use - to read it from stdin.
//
// # Flags
//
//	-r, --root          Trusted certificate file (repeatable)
//	-a, --intermediate  Certificate file appended to the chain (repeatable)
//	-p, --precert       Check as a precertificate chain
//	-c, --config        JSON or YAML config file
//	-f, --format        text, tree, table or json (default text)
//	-v, --verbose       Log trust loading and verification steps
//	-o, --output        Write the assembled chain to a file
//	-d, --der           Write --output as DER instead of PEM
//
// # Environment
//
//	CT_CHECKER_CONFIG_FILE  Config file used when --config is not given
//	CT_CHECKER_ROOTS        Extra trusted certificate files, path-list separated
//
// # Examples
//
// Check a server chain:
//
//	ct-cert-checker -r ca-cert.pem chain.pem
//
// Check a precertificate chain and draw it as a tree:
//
//	ct-cert-checker -r ca-cert.pem -p -f tree precert-chain.pem
//
// The exit status is 0 when the chain is trusted and 1 otherwise.
package main
