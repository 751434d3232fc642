// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package checker_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/checker"
	x509chain "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/x509test"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/logger"
)

func load(t *testing.T, name string) *x509certs.Certificate {
	t.Helper()

	cert := x509certs.Parse(x509test.PEM(t, name))
	require.True(t, cert.IsLoaded(), "fixture %s: %v", name, cert.Err())
	return cert
}

func trusting(t *testing.T, roots ...string) *checker.Checker {
	t.Helper()

	c := checker.New()
	for _, root := range roots {
		require.True(t, c.LoadTrustedCertificate(x509test.Path(t, root)), "loading %s", root)
	}
	return c
}

// assertReason checks err against the expected reason and index.
func assertReason(t *testing.T, err error, reason checker.Reason, index int) {
	t.Helper()

	var verr *checker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, reason, verr.Reason, "reason: %v", err)
	assert.Equal(t, index, verr.Index, "index: %v", err)
}

func TestCheckCertChain(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Empty Store Fails Then Passes After Loading Root",
			testFunc: func(t *testing.T) {
				c := checker.New()
				ch := x509chain.New(x509test.PEM(t, x509test.LeafCert))
				require.True(t, ch.IsLoaded())

				assert.False(t, c.CheckCertChain(ch))
				assertReason(t, c.VerifyCertChain(ch), checker.ReasonUntrustedRoot, 0)

				require.True(t, c.LoadTrustedCertificate(x509test.Path(t, x509test.CACert)))
				assert.True(t, c.CheckCertChain(ch))
				assert.NoError(t, c.VerifyCertChain(ch))
			},
		},
		{
			name: "Missing Intermediate Passes After AddCert",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				ch := x509chain.New(x509test.PEM(t, x509test.ChainLeafCert))

				err := c.VerifyCertChain(ch)
				assertReason(t, err, checker.ReasonUntrustedRoot, 0)
				assert.ErrorIs(t, err, checker.ErrUntrustedRoot)

				ch.AddCert(load(t, x509test.IntermediateCert))
				assert.True(t, c.CheckCertChain(ch))
			},
		},
		{
			name: "Full Chain Including Root",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				ch := x509chain.New(x509test.Concat(t, x509test.ChainLeafCert, x509test.IntermediateCert, x509test.CACert))
				assert.True(t, c.CheckCertChain(ch))
			},
		},
		{
			name: "Reversed Pair Fails Regardless Of Store",
			testFunc: func(t *testing.T) {
				ch := x509chain.New(x509test.Concat(t, x509test.IntermediateCert, x509test.ChainLeafCert))

				for _, c := range []*checker.Checker{
					checker.New(),
					trusting(t, x509test.CACert),
					trusting(t, x509test.CACert, x509test.IntermediateCert),
				} {
					err := c.VerifyCertChain(ch)
					assertReason(t, err, checker.ReasonBadLink, 0)
					assert.ErrorIs(t, err, checker.ErrBadLink)
					assert.ErrorIs(t, err, x509certs.ErrSignature)
				}
			},
		},
		{
			name: "Broken Link Reports Child Index",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				ch := x509chain.New(x509test.Concat(t, x509test.ChainLeafCert, x509test.IntermediateCert, x509test.CAProtoCert))
				assertReason(t, c.VerifyCertChain(ch), checker.ReasonBadLink, 1)
			},
		},
		{
			name: "Unparsed Entry",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				ch := x509chain.New(x509test.PEM(t, x509test.LeafCert))
				ch.AddCert(x509certs.Parse([]byte("garbage")))

				err := c.VerifyCertChain(ch)
				assertReason(t, err, checker.ReasonNotLoaded, 1)
				assert.ErrorIs(t, err, checker.ErrNotLoaded)
				assert.ErrorIs(t, err, x509certs.ErrParseCertificate)
			},
		},
		{
			name: "Empty And Nil Chains",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)

				assertReason(t, c.VerifyCertChain(x509chain.New(nil)), checker.ReasonNotLoaded, -1)
				assertReason(t, c.VerifyCertChain(nil), checker.ReasonNotLoaded, -1)
				assert.False(t, c.CheckCertChain(nil))
			},
		},
		{
			name: "Trusted Leaf Anchors Itself",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.LeafCert)
				assert.True(t, c.CheckCertChain(x509chain.New(x509test.PEM(t, x509test.LeafCert))))
			},
		},
		{
			name: "Same Name Different Key Is Untrusted",
			testFunc: func(t *testing.T) {
				impostor := x509test.NewRoot(t, "Test Root CA")
				c := checker.New()
				require.NoError(t, c.AddTrustedCertificate(impostor.PEM()))

				ch := x509chain.New(x509test.PEM(t, x509test.LeafCert))
				assertReason(t, c.VerifyCertChain(ch), checker.ReasonUntrustedRoot, 0)
			},
		},
		{
			name: "Name Match Alone Is Not Trust",
			testFunc: func(t *testing.T) {
				root := x509test.NewRoot(t, "Shared Name Root")
				leaf := x509test.NewLeaf(t, "leaf.example.com", root)
				// Same subject bytes, different key.
				rival := x509test.NewRoot(t, "Shared Name Root")

				c := checker.New()
				require.NoError(t, c.AddTrustedCertificate(rival.PEM()))
				require.Len(t, c.Store().Candidates(x509certs.FromX509(leaf.Cert)), 1)

				ch := x509chain.New(leaf.PEM())
				assertReason(t, c.VerifyCertChain(ch), checker.ReasonUntrustedRoot, 0)

				require.NoError(t, c.AddTrustedCertificate(root.PEM()))
				assert.True(t, c.CheckCertChain(ch))
			},
		},
		{
			name: "Differently Encoded Issuer Name",
			testFunc: func(t *testing.T) {
				root := x509test.NewRoot(t, "Encoded Name Root")
				leaf := x509test.Mint(t, x509test.LeafTemplate("utf8.example.com"), x509test.UTF8Subject(t, root))
				leafCert := x509certs.FromX509(leaf.Cert)
				rootCert := x509certs.FromX509(root.Cert)
				require.NoError(t, leafCert.CheckIssuedBy(rootCert))
				require.False(t, leafCert.IssuedByName(rootCert))

				c := checker.New()
				require.NoError(t, c.AddTrustedCertificate(x509test.NewRoot(t, "Encoded Name Root").PEM()))
				require.NoError(t, c.AddTrustedCertificate(root.PEM()))
				assert.Empty(t, c.Store().Candidates(leafCert))

				ch := x509chain.New(leaf.PEM())
				require.NoError(t, c.VerifyCertChain(ch))

				other := checker.New()
				require.NoError(t, other.AddTrustedCertificate(x509test.NewRoot(t, "Unrelated Root").PEM()))
				assertReason(t, other.VerifyCertChain(ch), checker.ReasonUntrustedRoot, 0)
			},
		},
		{
			name: "Published Precertificate As Plain Chain",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.TFRootCert)
				ch := x509chain.New(x509test.Concat(t, x509test.TFPrecert, x509test.TFRootCert))
				assert.True(t, c.CheckCertChain(ch))
			},
		},
		{
			name: "Production Precertificate Anchored By Intermediate",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.GTSIntermediateCert)
				assert.True(t, c.CheckCertChain(x509chain.New(x509test.PEM(t, x509test.GTSPrecert))))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestCheckProtoCertChain(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Well Formed Passes Only With Root Trusted",
			testFunc: func(t *testing.T) {
				pc := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CAProtoCert))
				require.True(t, pc.IsWellFormed())

				c := checker.New()
				assert.False(t, c.CheckProtoCertChain(pc))
				assertReason(t, c.VerifyProtoCertChain(pc), checker.ReasonUntrustedRoot, 1)

				require.True(t, c.LoadTrustedCertificate(x509test.Path(t, x509test.CACert)))
				assert.True(t, c.CheckProtoCertChain(pc))
			},
		},
		{
			name: "Well Formed With Root In Chain",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				pc := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CAProtoCert, x509test.CACert))
				assert.True(t, c.CheckProtoCertChain(pc))
			},
		},
		{
			name: "Precert Only Is Not Well Formed",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert, x509test.CAProtoCert)
				pc := x509chain.NewPrecert(x509test.PEM(t, x509test.ProtoCert))
				require.True(t, pc.IsLoaded())
				require.False(t, pc.IsWellFormed())

				err := c.VerifyProtoCertChain(pc)
				assertReason(t, err, checker.ReasonNotWellFormed, -1)
				assert.ErrorIs(t, err, checker.ErrNotWellFormed)
				assert.ErrorIs(t, err, x509chain.ErrPrecertTooShort)
				assert.False(t, c.CheckProtoCertChain(pc))
			},
		},
		{
			name: "Shape Is Checked Before Signatures",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				// The root did not sign the precertificate either, but the
				// missing signer marker is what gets reported.
				pc := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CACert))

				err := c.VerifyProtoCertChain(pc)
				assertReason(t, err, checker.ReasonNotWellFormed, -1)
				assert.ErrorIs(t, err, x509chain.ErrMissingSignerEKU)
				assert.NotErrorIs(t, err, x509certs.ErrSignature)
			},
		},
		{
			name: "Plain Leaf Is Not Well Formed Even When Trusted",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				ch := x509chain.New(x509test.PEM(t, x509test.LeafCert))
				require.True(t, c.CheckCertChain(ch))

				err := c.VerifyProtoCertChain(x509chain.PrecertFromChain(ch))
				assertReason(t, err, checker.ReasonNotWellFormed, -1)
			},
		},
		{
			name: "Signer Not Trusted Because Of Its Marker",
			testFunc: func(t *testing.T) {
				root := x509test.NewRoot(t, "Untrusted Root")
				signer := x509test.NewPrecertSigner(t, "Signer", root)
				precert, _ := x509test.NewPrecert(t, "precert.example.com", signer, root)

				c := trusting(t, x509test.CACert)
				pc := x509chain.NewPrecert(append(precert.PEM(), signer.PEM()...))
				require.True(t, pc.IsWellFormed())
				assertReason(t, c.VerifyProtoCertChain(pc), checker.ReasonUntrustedRoot, 1)
			},
		},
		{
			name: "Wrong Signer",
			testFunc: func(t *testing.T) {
				root := x509test.NewRoot(t, "Root")
				signerA := x509test.NewPrecertSigner(t, "Signer A", root)
				signerB := x509test.NewPrecertSigner(t, "Signer B", root)
				precert, _ := x509test.NewPrecert(t, "precert.example.com", signerA, root)

				c := checker.New()
				require.NoError(t, c.AddTrustedCertificate(root.PEM()))

				pc := x509chain.NewPrecert(append(precert.PEM(), signerB.PEM()...))
				require.True(t, pc.IsWellFormed())

				err := c.VerifyProtoCertChain(pc)
				assertReason(t, err, checker.ReasonBadPrecertLink, 0)
				assert.ErrorIs(t, err, checker.ErrBadPrecertLink)
				assert.NotErrorIs(t, err, checker.ErrBadLink)
			},
		},
		{
			name: "Broken Link Above Signer",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				pc := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CAProtoCert, x509test.IntermediateCert))
				assertReason(t, c.VerifyProtoCertChain(pc), checker.ReasonBadLink, 1)
			},
		},
		{
			name: "Unparsed Entry",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				pc := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CAProtoCert))
				pc.AddCert(x509certs.Parse(nil))

				err := c.VerifyProtoCertChain(pc)
				assertReason(t, err, checker.ReasonNotLoaded, 2)
				assert.ErrorIs(t, err, x509certs.ErrEmptyInput)
			},
		},
		{
			name: "Nil Chain",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.CACert)
				assertReason(t, c.VerifyProtoCertChain(nil), checker.ReasonNotLoaded, -1)
				assertReason(t, c.VerifyProtoCertChain(&x509chain.PrecertChain{}), checker.ReasonNotLoaded, -1)
			},
		},
		{
			name: "Published Precertificate Without Signing CA",
			testFunc: func(t *testing.T) {
				c := trusting(t, x509test.TFRootCert)
				pc := x509chain.NewPrecert(x509test.Concat(t, x509test.TFPrecert, x509test.TFRootCert))
				assertReason(t, c.VerifyProtoCertChain(pc), checker.ReasonNotWellFormed, -1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestChecker_Idempotence(t *testing.T) {
	c := trusting(t, x509test.CACert)
	good := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CAProtoCert))
	bad := x509chain.New(x509test.Concat(t, x509test.IntermediateCert, x509test.ChainLeafCert))

	before := good.Certificates()
	for range 5 {
		assert.True(t, c.CheckProtoCertChain(good))
		assert.True(t, c.CheckCertChain(good.Chain))
		assert.False(t, c.CheckCertChain(bad))
	}

	assert.Equal(t, before, good.Certificates(), "checks must not mutate the chain")
	assert.Equal(t, 1, c.Store().Len(), "checks must not mutate the store")
}

func TestLoadTrustedCertificate(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Loading Same Root Twice",
			testFunc: func(t *testing.T) {
				c := checker.New()
				path := x509test.Path(t, x509test.CACert)

				assert.True(t, c.LoadTrustedCertificate(path))
				assert.True(t, c.LoadTrustedCertificate(path))
				assert.Equal(t, 1, c.Store().Len())

				ch := x509chain.New(x509test.PEM(t, x509test.LeafCert))
				assert.True(t, c.CheckCertChain(ch))
			},
		},
		{
			name: "DER File",
			testFunc: func(t *testing.T) {
				c := checker.New()
				path := x509test.WriteFile(t, "root.der", load(t, x509test.CACert).Raw())
				assert.True(t, c.LoadTrustedCertificate(path))
				assert.True(t, c.Store().Contains(load(t, x509test.CACert)))
			},
		},
		{
			name: "Failures Leave Store Untouched",
			testFunc: func(t *testing.T) {
				c := checker.New()

				assert.False(t, c.LoadTrustedCertificate(filepath.Join(t.TempDir(), "missing.pem")))
				assert.False(t, c.LoadTrustedCertificate(x509test.WriteFile(t, "garbage.pem", []byte("garbage"))))
				assert.False(t, c.LoadTrustedCertificate(x509test.WriteFile(t, "empty.pem", nil)))
				assert.False(t, c.LoadTrustedCertificate(x509test.WriteFile(t, "bundle.pem",
					x509test.Concat(t, x509test.CACert, x509test.IntermediateCert))))

				assert.Zero(t, c.Store().Len())
			},
		},
		{
			name: "AddTrustedCertificate Errors",
			testFunc: func(t *testing.T) {
				c := checker.New()

				assert.ErrorIs(t, c.AddTrustedCertificate(nil), x509certs.ErrEmptyInput)
				assert.ErrorIs(t, c.AddTrustedCertificate([]byte("garbage")), checker.ErrInvalidTrustRoot)
				assert.ErrorIs(t, c.AddTrustedCertificate(x509test.Concat(t, x509test.CACert, x509test.LeafCert)),
					checker.ErrNotSingleCertificate)

				err := c.AddTrustedCertificate(append(x509test.PEM(t, x509test.CACert)[:40:40], '\n'))
				assert.ErrorIs(t, err, checker.ErrInvalidTrustRoot)
				assert.Zero(t, c.Store().Len())
			},
		},
		{
			name: "LoadTrustedCertificates",
			testFunc: func(t *testing.T) {
				c := checker.New()
				missing := filepath.Join(t.TempDir(), "missing.pem")

				n, err := c.LoadTrustedCertificates(
					x509test.Path(t, x509test.CACert),
					missing,
					x509test.Path(t, x509test.TFRootCert),
				)
				assert.Equal(t, 2, n)
				assert.ErrorIs(t, err, os.ErrNotExist)
				assert.Contains(t, err.Error(), missing)
				assert.Equal(t, 2, c.Store().Len())

				n, err = c.LoadTrustedCertificates()
				assert.Zero(t, n)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestChecker_ConcurrentChecksDuringLoads(t *testing.T) {
	c := trusting(t, x509test.CACert)
	trusted := x509chain.New(x509test.Concat(t, x509test.ChainLeafCert, x509test.IntermediateCert))
	precert := x509chain.NewPrecert(x509test.Concat(t, x509test.ProtoCert, x509test.CAProtoCert))
	reversed := x509chain.New(x509test.Concat(t, x509test.IntermediateCert, x509test.ChainLeafCert))

	roots := make([][]byte, 16)
	for i := range roots {
		roots[i] = x509test.NewRoot(t, "Concurrent Root").PEM()
	}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.AddTrustedCertificate(roots[i]))
		}()
		go func() {
			defer wg.Done()
			for range 10 {
				assert.True(t, c.CheckCertChain(trusted))
				assert.True(t, c.CheckProtoCertChain(precert))
				assert.False(t, c.CheckCertChain(reversed))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 17, c.Store().Len())
}

func TestChecker_Options(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewJSONLogger(&buf, false)
	store := checker.NewStore()

	c := checker.New(checker.WithLogger(log), checker.WithStore(store), checker.WithLogger(nil), checker.WithStore(nil))
	require.Same(t, store, c.Store())

	require.True(t, c.LoadTrustedCertificate(x509test.Path(t, x509test.CACert)))
	assert.Contains(t, buf.String(), "trusted certificate added")

	other := checker.New(checker.WithStore(store))
	assert.True(t, other.CheckCertChain(x509chain.New(x509test.PEM(t, x509test.LeafCert))), "stores can be shared")

	buf.Reset()
	assert.False(t, c.CheckCertChain(x509chain.New(x509test.PEM(t, x509test.ChainLeafCert))))
	assert.Contains(t, buf.String(), "untrusted root")
}

func TestValidationError(t *testing.T) {
	cause := errors.New("boom")
	err := &checker.ValidationError{Reason: checker.ReasonBadLink, Index: 2, Err: cause}

	assert.Equal(t, "checker: bad link at index 2: boom", err.Error())
	assert.ErrorIs(t, err, checker.ErrBadLink)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, checker.ErrUntrustedRoot)

	whole := &checker.ValidationError{Reason: checker.ReasonNotWellFormed, Index: -1}
	assert.Equal(t, "checker: not well formed", whole.Error())

	assert.Equal(t, "unknown reason (99)", checker.Reason(99).String())
	assert.NotErrorIs(t, &checker.ValidationError{Reason: checker.Reason(99)}, checker.ErrBadLink)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		err      error
		expected x509chain.Status
	}{
		{
			name:     "Success",
			n:        3,
			expected: x509chain.Status{0: "ok", 1: "ok", 2: "ok"},
		},
		{
			name:     "Bad Link",
			n:        3,
			err:      &checker.ValidationError{Reason: checker.ReasonBadLink, Index: 1},
			expected: x509chain.Status{0: "ok", 1: "bad link"},
		},
		{
			name:     "Untrusted Root",
			n:        2,
			err:      &checker.ValidationError{Reason: checker.ReasonUntrustedRoot, Index: 1},
			expected: x509chain.Status{0: "ok", 1: "untrusted root"},
		},
		{
			name:     "Not Loaded",
			n:        3,
			err:      &checker.ValidationError{Reason: checker.ReasonNotLoaded, Index: 2},
			expected: x509chain.Status{2: "not loaded"},
		},
		{
			name:     "Whole Chain",
			n:        1,
			err:      &checker.ValidationError{Reason: checker.ReasonNotWellFormed, Index: -1},
			expected: x509chain.Status{0: "not well formed"},
		},
		{
			name:     "Foreign Error",
			n:        1,
			err:      errors.New("other"),
			expected: x509chain.Status{0: "other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.Status(tt.n, tt.err))
		})
	}
}
