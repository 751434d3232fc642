// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package checker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/logger"
)

var (
	// ErrNotSingleCertificate indicates trust-root input holding more than one certificate.
	ErrNotSingleCertificate = errors.New("checker: trusted certificate input must hold exactly one certificate")

	// ErrInvalidTrustRoot indicates trust-root input that did not parse.
	ErrInvalidTrustRoot = errors.New("checker: invalid trusted certificate")
)

// Checker verifies certificate chains and precertificate chains against a
// [Store] of trusted certificates.
//
// Verification never mutates the chain or the store, so any number of
// checks may run concurrently with each other and with trust-root loading.
type Checker struct {
	store *Store
	log   logger.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger that receives load and verification outcomes.
// A nil logger keeps the default.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStore makes the Checker use an existing store, which may be shared
// with other checkers. A nil store keeps the default.
func WithStore(s *Store) Option {
	return func(c *Checker) {
		if s != nil {
			c.store = s
		}
	}
}

// New creates a Checker with an empty trust store and a silent logger.
func New(opts ...Option) *Checker {
	c := &Checker{
		store: NewStore(),
		log:   logger.NewJSONLogger(nil, true).WithComponent("checker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the trust store.
func (c *Checker) Store() *Store { return c.store }

// LoadTrustedCertificate reads one certificate from the file at path and
// adds it to the trust store. It reports whether the certificate is trusted
// afterwards. On failure the store is left untouched and the cause is logged.
//
// Loading the same certificate twice succeeds and leaves one copy.
//
// Thread Safety: Safe for concurrent use.
func (c *Checker) LoadTrustedCertificate(path string) bool {
	if err := c.loadFile(path); err != nil {
		c.log.Printf("trusted certificate %s not loaded: %v", path, err)
		return false
	}
	return true
}

// LoadTrustedCertificates loads every path in order. It returns the number
// of paths loaded and the joined errors of those that failed.
func (c *Checker) LoadTrustedCertificates(paths ...string) (int, error) {
	var (
		loaded int
		errs   []error
	)
	for _, path := range paths {
		if err := c.loadFile(path); err != nil {
			c.log.Printf("trusted certificate %s not loaded: %v", path, err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

func (c *Checker) loadFile(path string) error {
	data, err := gc.ReadFile(path)
	if err != nil {
		return err
	}
	return c.AddTrustedCertificate(data)
}

// AddTrustedCertificate parses exactly one certificate from data, which may
// be PEM, DER or a single-certificate PKCS#7 bundle, and adds it to the trust
// store.
//
// Returns:
//   - error: [x509certs.ErrEmptyInput], [ErrNotSingleCertificate], or
//     [ErrInvalidTrustRoot] wrapping the parse error; nil on success
//
// Thread Safety: Safe for concurrent use.
func (c *Checker) AddTrustedCertificate(data []byte) error {
	blocks := x509certs.NewDecoder().Split(data)
	switch len(blocks) {
	case 0:
		return x509certs.ErrEmptyInput
	case 1:
	default:
		return fmt.Errorf("%w: found %d", ErrNotSingleCertificate, len(blocks))
	}

	cert := x509certs.FromBlock(blocks[0])
	if !cert.IsLoaded() {
		return fmt.Errorf("%w: %w", ErrInvalidTrustRoot, cert.Err())
	}

	added, err := c.store.Add(cert)
	if err != nil {
		return err
	}
	if added {
		c.log.Printf("trusted certificate added: %s", cert.SubjectName())
	}
	return nil
}

// CheckCertChain reports whether ch verifies. See [Checker.VerifyCertChain].
func (c *Checker) CheckCertChain(ch *x509chain.Chain) bool {
	return c.VerifyCertChain(ch) == nil
}

// VerifyCertChain verifies a leaf-first chain against the trust store.
//
// Every entry must be loaded and signed by the entry after it. The last
// entry must either be a trusted certificate itself or be signed by a
// trusted certificate. Names only order the search for that signer; they are
// never taken as proof of linkage.
//
// Returns:
//   - error: *[ValidationError] with [ReasonNotLoaded], [ReasonBadLink] or
//     [ReasonUntrustedRoot]; nil if the chain is trusted
//
// Thread Safety: Safe for concurrent use.
func (c *Checker) VerifyCertChain(ch *x509chain.Chain) error {
	certs := snapshot(ch)
	if err := checkLoaded(certs); err != nil {
		return c.fail("chain", err)
	}
	if _, err := c.verifyFrom(certs, 0); err != nil {
		return c.fail("chain", err)
	}
	c.log.Printf("chain verified: %s", certs[0].SubjectName())
	return nil
}

// CheckProtoCertChain reports whether pc verifies. See [Checker.VerifyProtoCertChain].
func (c *Checker) CheckProtoCertChain(pc *x509chain.PrecertChain) bool {
	return c.VerifyProtoCertChain(pc) == nil
}

// VerifyProtoCertChain verifies a precertificate chain against the trust store.
//
// The chain must be loaded and well formed before any signature is checked.
// The precertificate must then be signed by the signing certificate, over
// the TBSCertificate as issued with the poison extension present. From the
// signing certificate on, the rules of [Checker.VerifyCertChain] apply: the
// signing certificate earns no trust from its extended key usage.
//
// Returns:
//   - error: *[ValidationError] with [ReasonNotLoaded], [ReasonNotWellFormed],
//     [ReasonBadPrecertLink], [ReasonBadLink] or [ReasonUntrustedRoot]; nil
//     if the chain is trusted
//
// Thread Safety: Safe for concurrent use.
func (c *Checker) VerifyProtoCertChain(pc *x509chain.PrecertChain) error {
	_, err := c.verifyPrecert(pc)
	return err
}

func (c *Checker) verifyPrecert(pc *x509chain.PrecertChain) ([]*x509certs.Certificate, error) {
	var certs []*x509certs.Certificate
	if pc != nil && pc.Chain != nil {
		certs = pc.Certificates()
	}
	if err := checkLoaded(certs); err != nil {
		return nil, c.fail("precertificate chain", err)
	}

	// Judge the shape on the same snapshot the signatures are checked on.
	shape := x509chain.PrecertFromChain(x509chain.FromCertificates(certs...))
	if err := shape.WellFormedErr(); err != nil {
		return nil, c.fail("precertificate chain", &ValidationError{Reason: ReasonNotWellFormed, Index: -1, Err: err})
	}

	if err := certs[0].CheckIssuedBy(certs[1]); err != nil {
		return nil, c.fail("precertificate chain", &ValidationError{Reason: ReasonBadPrecertLink, Index: 0, Err: err})
	}

	if _, err := c.verifyFrom(certs, 1); err != nil {
		return nil, c.fail("precertificate chain", err)
	}

	c.log.Printf("precertificate chain verified: %s", certs[0].SubjectName())
	return certs, nil
}

// verifyFrom checks the links from certs[start] to the end and anchors the
// last entry in the store. It returns the trusted certificate that anchors
// the chain.
func (c *Checker) verifyFrom(certs []*x509certs.Certificate, start int) (*x509certs.Certificate, error) {
	for i := start; i+1 < len(certs); i++ {
		if err := certs[i].CheckIssuedBy(certs[i+1]); err != nil {
			return nil, &ValidationError{Reason: ReasonBadLink, Index: i, Err: err}
		}
	}

	last := certs[len(certs)-1]
	if c.store.Contains(last) {
		return last, nil
	}
	if anchor := c.trustedIssuerOf(last); anchor != nil {
		return anchor, nil
	}

	return nil, &ValidationError{
		Reason: ReasonUntrustedRoot,
		Index:  len(certs) - 1,
		Err:    fmt.Errorf("no trusted certificate issued %q", last.IssuerName()),
	}
}

// trustedIssuerOf returns the trusted certificate that signed cert, or nil.
//
// Certificates whose subject equals cert's raw issuer are tried first. The
// rest of the store is tried after them, since an equivalent name may be
// encoded differently.
func (c *Checker) trustedIssuerOf(cert *x509certs.Certificate) *x509certs.Certificate {
	candidates := c.store.Candidates(cert)
	for _, candidate := range candidates {
		if cert.CheckIssuedBy(candidate) == nil {
			return candidate
		}
	}
	for _, candidate := range c.store.Certificates() {
		if slices.Contains(candidates, candidate) {
			continue
		}
		if cert.CheckIssuedBy(candidate) == nil {
			return candidate
		}
	}
	return nil
}

func (c *Checker) fail(kind string, err error) error {
	c.log.Printf("%s rejected: %v", kind, err)
	return err
}

func snapshot(ch *x509chain.Chain) []*x509certs.Certificate {
	if ch == nil {
		return nil
	}
	return ch.Certificates()
}

func checkLoaded(certs []*x509certs.Certificate) error {
	if len(certs) == 0 {
		return &ValidationError{Reason: ReasonNotLoaded, Index: -1, Err: x509chain.ErrChainNotLoaded}
	}
	for i, cert := range certs {
		if !cert.IsLoaded() {
			return &ValidationError{Reason: ReasonNotLoaded, Index: i, Err: cert.Err()}
		}
	}
	return nil
}
