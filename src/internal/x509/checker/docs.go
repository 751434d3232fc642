// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package checker decides whether certificate chains and Certificate
// Transparency precertificate chains reach a trusted certificate.
//
// A [Checker] owns a mutable [Store] of trusted certificates. Verification
// walks the supplied chain only: each entry must be signed by the next, and
// the last entry must be trusted or signed by a trusted certificate. No
// intermediates are fetched and no revocation, expiry or name constraints
// are checked.
//
// Failures are reported as *[ValidationError], whose [Reason] tells a chain
// that did not parse from one that is malformed, broken or untrusted:
//
//	if err := c.VerifyProtoCertChain(pc); errors.Is(err, checker.ErrNotWellFormed) {
//		// reject the submission without looking at signatures
//	}
package checker
