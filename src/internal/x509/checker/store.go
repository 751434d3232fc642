// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package checker

import (
	"crypto/sha256"
	"sync"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
)

// Store is a set of trusted certificates.
//
// Certificates are indexed by raw subject for fast issuer lookups and by SHA-256
// fingerprint for membership, so adding the same certificate twice is a
// no-op. The lock is held only while inserting or copying out a lookup
// result; signature checks against store members run unlocked.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu        sync.RWMutex
	bySubject map[string][]*x509certs.Certificate
	byFP      map[[sha256.Size]byte]*x509certs.Certificate
	order     []*x509certs.Certificate
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		bySubject: make(map[string][]*x509certs.Certificate),
		byFP:      make(map[[sha256.Size]byte]*x509certs.Certificate),
	}
}

// Add inserts cert. It reports whether cert was newly added; a certificate
// already present is left in place. A certificate that failed to load is
// rejected with [x509certs.ErrNotLoaded].
func (s *Store) Add(cert *x509certs.Certificate) (bool, error) {
	if !cert.IsLoaded() {
		return false, x509certs.ErrNotLoaded
	}

	fp := cert.Fingerprint()
	subject := string(cert.RawSubject())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byFP[fp]; exists {
		return false, nil
	}
	s.byFP[fp] = cert
	s.bySubject[subject] = append(s.bySubject[subject], cert)
	s.order = append(s.order, cert)
	return true, nil
}

// Contains reports whether a byte-identical certificate is in the store.
func (s *Store) Contains(cert *x509certs.Certificate) bool {
	if !cert.IsLoaded() {
		return false
	}
	fp := cert.Fingerprint()

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byFP[fp]
	return ok
}

// Candidates returns the trusted certificates whose subject equals cert's
// issuer name byte for byte. A name match is only a candidate; the caller
// must still check the signature, and an issuer whose name is encoded
// differently is not returned.
func (s *Store) Candidates(cert *x509certs.Certificate) []*x509certs.Certificate {
	if !cert.IsLoaded() {
		return nil
	}
	issuer := string(cert.RawIssuer())

	s.mu.RLock()
	defer s.mu.RUnlock()

	found := s.bySubject[issuer]
	if len(found) == 0 {
		return nil
	}
	out := make([]*x509certs.Certificate, len(found))
	copy(out, found)
	return out
}

// Len returns the number of trusted certificates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Certificates returns the trusted certificates in insertion order.
func (s *Store) Certificates() []*x509certs.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*x509certs.Certificate, len(s.order))
	copy(out, s.order)
	return out
}
