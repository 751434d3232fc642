// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	// ErrNotLoaded indicates an operation on a certificate that failed to load.
	ErrNotLoaded = errors.New("x509certs: certificate not loaded")

	// ErrSignature indicates that an issuer's key does not validate a certificate's signature.
	ErrSignature = errors.New("x509certs: signature verification failed")
)

var (
	// OIDExtensionCTPoison identifies the critical poison extension carried by
	// CT precertificates ([RFC 6962] section 3.1).
	//
	// [RFC 6962]: https://www.rfc-editor.org/rfc/rfc6962#section-3.1
	OIDExtensionCTPoison = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 3}

	// OIDExtKeyUsagePrecertSigning identifies a CA certificate dedicated to
	// signing precertificates on behalf of the issuing CA.
	OIDExtKeyUsagePrecertSigning = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 4}

	oidExtensionAuthorityKeyID = asn1.ObjectIdentifier{2, 5, 29, 35}
)

// Certificate wraps one parsed [X.509] certificate.
//
// A Certificate is immutable once constructed. It is either loaded, with every
// field parsed, or failed, in which case [Certificate.Err] reports why and all
// accessors return zero values. Callers must check [Certificate.IsLoaded]
// before relying on any field.
//
// [X.509]: https://grokipedia.com/page/X.509
type Certificate struct {
	cert *x509.Certificate
	err  error
}

// Parse constructs a Certificate from a single PEM block, DER certificate or
// PKCS7 bundle. For multi-block input only the first certificate is used.
//
// Parse never returns nil; malformed input yields a failed Certificate.
func Parse(data []byte) *Certificate {
	cert, err := NewDecoder().Decode(data)
	if err != nil {
		return &Certificate{err: err}
	}
	return &Certificate{cert: cert}
}

// FromDER constructs a Certificate from DER bytes.
func FromDER(der []byte) *Certificate {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return &Certificate{err: fmt.Errorf("%w: %w", ErrParseCertificate, err)}
	}
	return &Certificate{cert: cert}
}

// FromX509 wraps an already parsed certificate. A nil cert yields a failed
// Certificate.
func FromX509(cert *x509.Certificate) *Certificate {
	if cert == nil {
		return &Certificate{err: ErrNotLoaded}
	}
	return &Certificate{cert: cert}
}

// FromBlock constructs a Certificate from a block produced by [Decoder.Split].
// A block carrying an error yields a failed Certificate.
func FromBlock(b Block) *Certificate {
	if b.Err != nil {
		return &Certificate{err: b.Err}
	}
	return FromDER(b.DER)
}

// IsLoaded reports whether the certificate parsed successfully.
func (c *Certificate) IsLoaded() bool { return c != nil && c.cert != nil }

// Err returns the reason the certificate failed to load, or nil.
func (c *Certificate) Err() error {
	switch {
	case c == nil:
		return ErrNotLoaded
	case c.cert == nil && c.err == nil:
		return ErrNotLoaded
	default:
		return c.err
	}
}

// X509 returns the underlying parsed certificate, or nil if not loaded.
// The returned value must not be modified.
func (c *Certificate) X509() *x509.Certificate {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert
}

// Subject returns the subject name.
func (c *Certificate) Subject() pkix.Name {
	if !c.IsLoaded() {
		return pkix.Name{}
	}
	return c.cert.Subject
}

// Issuer returns the issuer name.
func (c *Certificate) Issuer() pkix.Name {
	if !c.IsLoaded() {
		return pkix.Name{}
	}
	return c.cert.Issuer
}

// SubjectName returns the subject in RFC 2253 form.
func (c *Certificate) SubjectName() string { return c.Subject().String() }

// IssuerName returns the issuer in RFC 2253 form.
func (c *Certificate) IssuerName() string { return c.Issuer().String() }

// RawSubject returns the DER-encoded subject name.
func (c *Certificate) RawSubject() []byte {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert.RawSubject
}

// RawIssuer returns the DER-encoded issuer name.
func (c *Certificate) RawIssuer() []byte {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert.RawIssuer
}

// PublicKey returns the subject public key.
func (c *Certificate) PublicKey() any {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert.PublicKey
}

// RawSubjectPublicKeyInfo returns the DER-encoded SubjectPublicKeyInfo.
func (c *Certificate) RawSubjectPublicKeyInfo() []byte {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert.RawSubjectPublicKeyInfo
}

// SerialNumber returns the certificate serial number.
func (c *Certificate) SerialNumber() *big.Int {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert.SerialNumber
}

// NotBefore returns the start of the validity period.
func (c *Certificate) NotBefore() time.Time {
	if !c.IsLoaded() {
		return time.Time{}
	}
	return c.cert.NotBefore
}

// NotAfter returns the end of the validity period.
func (c *Certificate) NotAfter() time.Time {
	if !c.IsLoaded() {
		return time.Time{}
	}
	return c.cert.NotAfter
}

// Extensions returns the raw extension set.
func (c *Certificate) Extensions() []pkix.Extension {
	if !c.IsLoaded() {
		return nil
	}
	return c.cert.Extensions
}

// extension returns the first extension with the given id.
func (c *Certificate) extension(id asn1.ObjectIdentifier) *pkix.Extension {
	for i := range c.Extensions() {
		if c.cert.Extensions[i].Id.Equal(id) {
			return &c.cert.Extensions[i]
		}
	}
	return nil
}

// IsCA reports whether the basic-constraints extension marks this certificate as a CA.
func (c *Certificate) IsCA() bool {
	return c.IsLoaded() && c.cert.BasicConstraintsValid && c.cert.IsCA
}

// IsPrecert reports whether the certificate carries the critical CT poison extension.
// A non-critical poison extension does not count.
func (c *Certificate) IsPrecert() bool {
	ext := c.extension(OIDExtensionCTPoison)
	return ext != nil && ext.Critical
}

// IsPrecertSigner reports whether the certificate carries the precertificate
// signing extended key usage.
func (c *Certificate) IsPrecertSigner() bool {
	if !c.IsLoaded() {
		return false
	}
	for _, oid := range c.cert.UnknownExtKeyUsage {
		if oid.Equal(OIDExtKeyUsagePrecertSigning) {
			return true
		}
	}
	return false
}

// Raw returns a copy of the DER encoding.
func (c *Certificate) Raw() []byte {
	if !c.IsLoaded() {
		return nil
	}
	return bytes.Clone(c.cert.Raw)
}

// PEM returns the PEM encoding.
func (c *Certificate) PEM() []byte {
	if !c.IsLoaded() {
		return nil
	}
	return NewDecoder().EncodePEM(c.cert)
}

// Fingerprint returns the SHA-256 digest of the DER encoding.
func (c *Certificate) Fingerprint() [sha256.Size]byte {
	if !c.IsLoaded() {
		return [sha256.Size]byte{}
	}
	return sha256.Sum256(c.cert.Raw)
}

// Equal reports whether both certificates are loaded and byte-identical.
func (c *Certificate) Equal(other *Certificate) bool {
	return c.IsLoaded() && other.IsLoaded() && c.cert.Equal(other.cert)
}

// CheckIssuedBy verifies that issuer's public key validates this
// certificate's signature over its as-issued TBSCertificate.
//
// The issuer must be allowed to sign certificates under the crypto/x509
// rules: a version 3 issuer needs the CA basic constraint and, if it has a
// key usage, the certificate-signing bit. Names are not compared.
func (c *Certificate) CheckIssuedBy(issuer *Certificate) error {
	if !c.IsLoaded() || !issuer.IsLoaded() {
		return ErrNotLoaded
	}
	if err := c.cert.CheckSignatureFrom(issuer.cert); err != nil {
		return fmt.Errorf("%w: %w", ErrSignature, err)
	}
	return nil
}

// IsSelfSigned checks if a certificate is self-signed.
//
// It verifies the certificate's signature against itself.
func (c *Certificate) IsSelfSigned() bool {
	return c.CheckIssuedBy(c) == nil
}

// IssuedByName reports whether this certificate's issuer name matches the
// subject name of issuer. It is advisory only.
func (c *Certificate) IssuedByName(issuer *Certificate) bool {
	return c.IsLoaded() && issuer.IsLoaded() && bytes.Equal(c.cert.RawIssuer, issuer.cert.RawSubject)
}
