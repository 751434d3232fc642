// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"sync"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
)

// Chain is an ordered, leaf-first sequence of [X.509] certificates.
//
// Entries that failed to parse stay in place as failed certificates, so a
// chain read from a blob keeps the position of every block it contained.
// A chain only grows: there is no API to remove or reorder entries.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu    sync.RWMutex
	certs []*x509certs.Certificate
}

// New creates a Chain from a blob of concatenated certificates.
//
// The blob may be PEM, concatenated DER, or a PKCS#7 bundle. Each block
// becomes one entry in the order it appears.
//
// Parameters:
//   - blob: Encoded certificates, leaf first
//
// Returns:
//   - *Chain: New Chain instance, never nil
func New(blob []byte) *Chain {
	blocks := x509certs.NewDecoder().Split(blob)

	ch := &Chain{certs: make([]*x509certs.Certificate, 0, len(blocks))}
	for _, b := range blocks {
		ch.certs = append(ch.certs, x509certs.FromBlock(b))
	}
	return ch
}

// FromCertificates creates a Chain from already constructed certificates.
// Nil entries are skipped.
func FromCertificates(certs ...*x509certs.Certificate) *Chain {
	ch := &Chain{certs: make([]*x509certs.Certificate, 0, len(certs))}
	for _, c := range certs {
		if c != nil {
			ch.certs = append(ch.certs, c)
		}
	}
	return ch
}

// IsLoaded reports whether the chain is non-empty and every entry loaded.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) IsLoaded() bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return allLoaded(ch.certs)
}

func allLoaded(certs []*x509certs.Certificate) bool {
	if len(certs) == 0 {
		return false
	}
	for _, c := range certs {
		if !c.IsLoaded() {
			return false
		}
	}
	return true
}

// Err returns the error of the first entry that failed to load, or nil.
func (ch *Chain) Err() error {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	for _, c := range ch.certs {
		if !c.IsLoaded() {
			return c.Err()
		}
	}
	return nil
}

// AddCert appends cert to the end of the chain. The chain takes ownership of
// cert; a nil cert is ignored. A failed certificate is appended as is and
// makes the chain unloaded.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) AddCert(cert *x509certs.Certificate) {
	if cert == nil {
		return
	}

	ch.mu.Lock()
	ch.certs = append(ch.certs, cert)
	ch.mu.Unlock()
}

// Len returns the number of entries, loaded or not.
func (ch *Chain) Len() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.certs)
}

// At returns the entry at index i, or nil if i is out of range.
func (ch *Chain) At(i int) *x509certs.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if i < 0 || i >= len(ch.certs) {
		return nil
	}
	return ch.certs[i]
}

// Leaf returns the first entry, or nil for an empty chain.
func (ch *Chain) Leaf() *x509certs.Certificate { return ch.At(0) }

// Last returns the final entry, or nil for an empty chain.
func (ch *Chain) Last() *x509certs.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.certs) == 0 {
		return nil
	}
	return ch.certs[len(ch.certs)-1]
}

// Certificates returns a snapshot of the entries. Appending to the chain
// afterwards does not change the returned slice.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Certificates() []*x509certs.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	out := make([]*x509certs.Certificate, len(ch.certs))
	copy(out, ch.certs)
	return out
}

// IsOrdered reports whether each entry's issuer name equals the subject name
// of the entry after it.
//
// Name linkage is advisory. It hints at a reversed or incomplete chain in
// diagnostics; linkage itself is only ever proven by signatures.
func (ch *Chain) IsOrdered() bool {
	certs := ch.Certificates()
	for i := 0; i+1 < len(certs); i++ {
		if !certs[i].IsLoaded() || !certs[i+1].IsLoaded() {
			return false
		}
		if !bytes.Equal(certs[i].RawIssuer(), certs[i+1].RawSubject()) {
			return false
		}
	}
	return len(certs) > 0
}

// EncodePEM returns the loaded entries as a PEM bundle, leaf first.
// Entries that failed to parse are skipped.
func (ch *Chain) EncodePEM() []byte {
	return x509certs.NewDecoder().EncodeMultiplePEM(ch.parsed())
}

// EncodeDER returns the loaded entries as concatenated DER, leaf first.
// Entries that failed to parse are skipped.
func (ch *Chain) EncodeDER() []byte {
	return x509certs.NewDecoder().EncodeMultipleDER(ch.parsed())
}

func (ch *Chain) parsed() []*x509.Certificate {
	var out []*x509.Certificate
	for _, c := range ch.Certificates() {
		if c.IsLoaded() {
			out = append(out, c.X509())
		}
	}
	return out
}
