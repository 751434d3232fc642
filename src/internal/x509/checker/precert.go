// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package checker

import (
	"crypto/sha256"
	"errors"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/chain"
)

// ErrIssuerUnavailable indicates a verified precertificate chain whose final
// issuer is neither in the chain nor in the trust store.
var ErrIssuerUnavailable = errors.New("checker: issuer of the precertificate signing certificate unavailable")

// PrecertEntry holds the fields a CT log records for a precertificate.
type PrecertEntry struct {
	// IssuerKeyHash is the SHA-256 hash of the SubjectPublicKeyInfo of the
	// CA that will issue the final certificate.
	IssuerKeyHash [sha256.Size]byte

	// TBSCertificate is the precertificate's TBSCertificate with the poison
	// extension removed and, for a signing certificate, the issuer and
	// authority key identifier of the final issuer.
	TBSCertificate []byte
}

// PrecertEntry verifies pc and derives its log entry.
//
// The final issuer is the CA that certified the signing certificate: chain
// entry 2 when present, otherwise the trusted certificate that anchors the
// signing certificate.
//
// Returns:
//   - *PrecertEntry: The derived entry
//   - error: Any error from [Checker.VerifyProtoCertChain], [ErrIssuerUnavailable],
//     or an error from [x509certs.Certificate.PrecertTBS]
func (c *Checker) PrecertEntry(pc *x509chain.PrecertChain) (*PrecertEntry, error) {
	certs, err := c.verifyPrecert(pc)
	if err != nil {
		return nil, err
	}
	precert, signer := certs[0], certs[1]

	var issuer *x509certs.Certificate
	if len(certs) > 2 {
		issuer = certs[2]
	} else {
		issuer = c.trustedIssuerOf(signer)
	}
	if issuer == nil {
		return nil, ErrIssuerUnavailable
	}

	tbs, err := precert.PrecertTBS(signer)
	if err != nil {
		return nil, err
	}

	return &PrecertEntry{
		IssuerKeyHash:  sha256.Sum256(issuer.RawSubjectPublicKeyInfo()),
		TBSCertificate: tbs,
	}, nil
}
