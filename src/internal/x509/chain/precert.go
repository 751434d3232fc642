// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"errors"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
)

var (
	// ErrChainNotLoaded indicates an empty chain or one with an entry that failed to load.
	ErrChainNotLoaded = errors.New("x509chain: chain not loaded")

	// ErrPrecertTooShort indicates a precertificate chain without a signing certificate.
	ErrPrecertTooShort = errors.New("x509chain: precertificate chain needs at least two certificates")

	// ErrMissingPoison indicates that entry 0 does not carry the critical CT poison extension.
	ErrMissingPoison = errors.New("x509chain: first certificate is not a precertificate")

	// ErrMissingSignerEKU indicates that entry 1 lacks the precertificate signing extended key usage.
	ErrMissingSignerEKU = errors.New("x509chain: second certificate is not a precertificate signing certificate")
)

// PrecertChain is a [Chain] whose first two entries play fixed roles: a
// precertificate followed by the CA precertificate signing certificate that
// signed it. Any further entries link the signer to a trusted root.
type PrecertChain struct {
	*Chain
}

// NewPrecert creates a PrecertChain from a blob, as [New] does.
func NewPrecert(blob []byte) *PrecertChain {
	return &PrecertChain{Chain: New(blob)}
}

// PrecertFromChain views ch as a precertificate chain. Both share entries,
// so certificates added to one are seen by the other. A nil ch yields an
// empty chain.
func PrecertFromChain(ch *Chain) *PrecertChain {
	if ch == nil {
		ch = FromCertificates()
	}
	return &PrecertChain{Chain: ch}
}

// Precert returns entry 0, or nil for an empty chain.
func (p *PrecertChain) Precert() *x509certs.Certificate { return p.entry(0) }

// Signer returns entry 1, or nil if the chain has fewer than two entries.
func (p *PrecertChain) Signer() *x509certs.Certificate { return p.entry(1) }

func (p *PrecertChain) entry(i int) *x509certs.Certificate {
	if p == nil || p.Chain == nil {
		return nil
	}
	return p.At(i)
}

// IsWellFormed reports whether the chain has the precertificate shape.
// Well-formedness is structural only; it says nothing about signatures or trust.
func (p *PrecertChain) IsWellFormed() bool { return p.WellFormedErr() == nil }

// WellFormedErr returns nil for a well-formed chain, or the first shape
// check that failed.
//
// The checks run in order: every entry loaded, at least two entries,
// entry 0 carries the critical poison extension, entry 1 carries the
// precertificate signing extended key usage.
//
// Returns:
//   - error: [ErrChainNotLoaded], [ErrPrecertTooShort], [ErrMissingPoison],
//     [ErrMissingSignerEKU], or nil
//
// Thread Safety: Safe for concurrent use.
func (p *PrecertChain) WellFormedErr() error {
	if p == nil || p.Chain == nil {
		return ErrChainNotLoaded
	}
	certs := p.Certificates()
	if !allLoaded(certs) {
		return ErrChainNotLoaded
	}
	if len(certs) < 2 {
		return ErrPrecertTooShort
	}
	if !certs[0].IsPrecert() {
		return ErrMissingPoison
	}
	if !certs[1].IsPrecertSigner() {
		return ErrMissingSignerEKU
	}
	return nil
}
