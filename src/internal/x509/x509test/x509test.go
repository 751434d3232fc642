// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509test provides certificate fixtures and a small in-memory PKI
// for tests of the chain checker.
//
// The files under testdata mirror a minimal CT test hierarchy:
//
//	ca-cert.pem            self-signed root
//	test-cert.pem          leaf issued by ca-cert.pem
//	intermediate-cert.pem  CA issued by ca-cert.pem
//	test2-cert.pem         leaf issued by intermediate-cert.pem
//	ca-proto-cert.pem      precertificate signing CA issued by ca-cert.pem
//	test-proto-cert.pem    precertificate issued by ca-proto-cert.pem
//
// plus precertificates published by the transparency.dev test suite:
//
//	tf-root-cert.pem       self-signed root
//	tf-precert.pem         precertificate issued directly by tf-root-cert.pem
//	gts-ca-1d2-cert.pem    production intermediate
//	gts-precert.pem        production precertificate issued by gts-ca-1d2-cert.pem
package x509test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"embed"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Fixture names under testdata.
const (
	CACert           = "ca-cert.pem"
	LeafCert         = "test-cert.pem"
	IntermediateCert = "intermediate-cert.pem"
	ChainLeafCert    = "test2-cert.pem"
	CAProtoCert      = "ca-proto-cert.pem"
	ProtoCert        = "test-proto-cert.pem"

	TFRootCert          = "tf-root-cert.pem"
	TFPrecert           = "tf-precert.pem"
	GTSIntermediateCert = "gts-ca-1d2-cert.pem"
	GTSPrecert          = "gts-precert.pem"
)

//go:embed testdata/*.pem
var fixtures embed.FS

// PEM returns the contents of the named fixture.
func PEM(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile("testdata/" + name)
	require.NoError(t, err, "missing fixture %s", name)
	return data
}

// Concat returns the named fixtures concatenated in order.
func Concat(t testing.TB, names ...string) []byte {
	t.Helper()

	var out []byte
	for _, name := range names {
		out = append(out, PEM(t, name)...)
	}
	return out
}

// Path writes the named fixture to a temporary directory and returns its path.
func Path(t testing.TB, name string) string {
	t.Helper()

	return WriteFile(t, name, PEM(t, name))
}

// WriteFile writes data to name inside a temporary directory and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

var (
	oidCTPoison          = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 3}
	oidPrecertSigningEKU = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 4}
)

var (
	fixedNotBefore = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	fixedNotAfter  = time.Date(2035, time.January, 1, 0, 0, 0, 0, time.UTC)
)

var serialCounter atomic.Int64

// Issued is a minted certificate together with its private key.
type Issued struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// PEM returns the PEM encoding of the certificate.
func (i *Issued) PEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: i.Cert.Raw})
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func nextSerial() *big.Int { return big.NewInt(1000 + serialCounter.Add(1)) }

func baseTemplate(cn string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber: nextSerial(),
		Subject: pkix.Name{
			Country:      []string{"GB"},
			Organization: []string{"Certificate Transparency"},
			CommonName:   cn,
		},
		NotBefore: fixedNotBefore,
		NotAfter:  fixedNotAfter,
	}
}

func caTemplate(cn string) *x509.Certificate {
	tmpl := baseTemplate(cn)
	tmpl.IsCA = true
	tmpl.BasicConstraintsValid = true
	tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	return tmpl
}

func leafTemplate(cn string) *x509.Certificate {
	tmpl := baseTemplate(cn)
	tmpl.BasicConstraintsValid = true
	tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	tmpl.DNSNames = []string{cn}
	return tmpl
}

func issue(t testing.TB, tmpl *x509.Certificate, key *ecdsa.PrivateKey, parent *Issued) *Issued {
	t.Helper()

	parentCert, parentKey := tmpl, key
	if parent != nil {
		parentCert, parentKey = parent.Cert, parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parentCert, &key.PublicKey, parentKey)
	require.NoError(t, err, "minting %s", tmpl.Subject.CommonName)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &Issued{Cert: cert, Key: key}
}

// NewRoot mints a self-signed root CA.
func NewRoot(t testing.TB, cn string) *Issued {
	t.Helper()
	return issue(t, caTemplate(cn), newKey(t), nil)
}

// NewIntermediate mints a CA issued by parent.
func NewIntermediate(t testing.TB, cn string, parent *Issued) *Issued {
	t.Helper()
	return issue(t, caTemplate(cn), newKey(t), parent)
}

// NewPrecertSigner mints a precertificate signing CA issued by parent.
func NewPrecertSigner(t testing.TB, cn string, parent *Issued) *Issued {
	t.Helper()

	tmpl := caTemplate(cn)
	tmpl.UnknownExtKeyUsage = []asn1.ObjectIdentifier{oidPrecertSigningEKU}
	return issue(t, tmpl, newKey(t), parent)
}

// NewLeaf mints an end-entity certificate issued by parent.
func NewLeaf(t testing.TB, cn string, parent *Issued) *Issued {
	t.Helper()
	return issue(t, leafTemplate(cn), newKey(t), parent)
}

// NewPrecert mints a precertificate signed by signer and the final
// certificate the CA finalIssuer issues from the same fields. Both share
// serial, validity, subject, key and every extension except the poison.
func NewPrecert(t testing.TB, cn string, signer, finalIssuer *Issued) (precert, final *Issued) {
	t.Helper()

	key := newKey(t)
	tmpl := leafTemplate(cn)

	final = issue(t, tmpl, key, finalIssuer)

	precertTmpl := *tmpl
	precertTmpl.ExtraExtensions = []pkix.Extension{{
		Id:       oidCTPoison,
		Critical: true,
		Value:    asn1.NullBytes,
	}}
	precert = issue(t, &precertTmpl, key, signer)

	return precert, final
}

// LeafTemplate returns the template NewLeaf signs for cn.
func LeafTemplate(cn string) *x509.Certificate { return leafTemplate(cn) }

// Mint signs tmpl under parent with a fresh key. A nil parent self-signs.
func Mint(t testing.TB, tmpl *x509.Certificate, parent *Issued) *Issued {
	t.Helper()
	return issue(t, tmpl, newKey(t), parent)
}

// UTF8Subject returns a copy of parent whose raw subject encodes every
// attribute as a UTF8String. The copy is only meant as the parent for
// [Mint]: children carry the re-encoded issuer name while still verifying
// against the original certificate's key.
func UTF8Subject(t testing.TB, parent *Issued) *Issued {
	t.Helper()

	rdns := parent.Cert.Subject.ToRDNSequence()
	for _, set := range rdns {
		for j := range set {
			if s, ok := set[j].Value.(string); ok {
				set[j].Value = asn1.RawValue{Tag: asn1.TagUTF8String, Bytes: []byte(s)}
			}
		}
	}
	raw, err := asn1.Marshal(rdns)
	require.NoError(t, err)
	require.NotEqual(t, parent.Cert.RawSubject, raw, "subject already UTF8String encoded")

	cert := *parent.Cert
	cert.RawSubject = raw
	return &Issued{Cert: &cert, Key: parent.Key}
}
