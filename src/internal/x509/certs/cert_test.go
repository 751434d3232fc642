// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/x509test"
)

const (
	invalidPEM = `
-----BEGIN INVALID-----
MIIEmTCCBD+gAwIBAgIRANFjRCmF+Y2bUYHbhxwkEpowCgYIKoZIzj0EAwIwgY8x
-----END INVALID-----
`

	invalidCERT = `
-----BEGIN CERTIFICATE-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAz6e5VV5F8rF2sFJ0Q4vA
-----END CERTIFICATE-----
`

	truncatedCERT = `
-----BEGIN CERTIFICATE-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAz6e5VV5F8rF2sFJ0Q4vA
`
)

func parseFixture(t *testing.T, name string) *x509.Certificate {
	t.Helper()

	block, _ := pem.Decode(x509test.PEM(t, name))
	require.NotNil(t, block, "failed to parse certificate PEM")

	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err, "failed to parse certificate")
	return cert
}

func TestDecoderOperations(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T, decoder *x509certs.Decoder, testCert *x509.Certificate)
	}{
		{
			name: "Decode Certificate",
			testFunc: func(t *testing.T, decoder *x509certs.Decoder, _ *x509.Certificate) {
				cert, err := decoder.Decode(x509test.PEM(t, x509test.LeafCert))
				require.NoError(t, err, "Decode() error")

				assert.Equal(t, "test.example.com", cert.Subject.CommonName, "expected CommonName test.example.com")
			},
		},
		{
			name: "Decode DER Certificate",
			testFunc: func(t *testing.T, decoder *x509certs.Decoder, cert *x509.Certificate) {
				decoded, err := decoder.Decode(cert.Raw)
				require.NoError(t, err, "Decode() error")

				assert.True(t, cert.Equal(decoded), "decoded certificate does not match original")
			},
		},
		{
			name: "Encode PEM Round Trip",
			testFunc: func(t *testing.T, decoder *x509certs.Decoder, cert *x509.Certificate) {
				encoded := decoder.EncodePEM(cert)
				require.NotEmpty(t, encoded, "EncodePEM() returned empty result")

				decodedBlock, _ := pem.Decode(encoded)
				require.NotNil(t, decodedBlock, "failed to decode encoded PEM")
				assert.Equal(t, "CERTIFICATE", decodedBlock.Type, "expected block type CERTIFICATE")

				decoded, err := x509.ParseCertificate(decodedBlock.Bytes)
				require.NoError(t, err, "ParseCertificate() error")
				assert.True(t, cert.Equal(decoded), "original and decoded certificates are not equal")
			},
		},
		{
			name: "Encode Multiple Certificates",
			testFunc: func(t *testing.T, decoder *x509certs.Decoder, cert *x509.Certificate) {
				for _, data := range [][]byte{
					decoder.EncodeMultiplePEM([]*x509.Certificate{cert, cert}),
					decoder.EncodeMultipleDER([]*x509.Certificate{cert, cert}),
				} {
					blocks := decoder.Split(data)
					require.Len(t, blocks, 2)
					for _, block := range blocks {
						assert.Equal(t, cert.Raw, block.DER)
					}
				}

				assert.Empty(t, decoder.EncodeMultiplePEM(nil), "expected empty result")
			},
		},
	}

	decoder := x509certs.NewDecoder()
	testCert := parseFixture(t, x509test.LeafCert)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t, decoder, testCert)
		})
	}
}

func TestDecoder_DecodeInvalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{
			name:     "Invalid PEM Block",
			input:    invalidPEM,
			expected: x509certs.ErrInvalidBlockType,
		},
		{
			name:     "Invalid Certificate",
			input:    invalidCERT,
			expected: x509certs.ErrParseCertificate,
		},
		{
			name:     "Invalid DER Data",
			input:    "not a certificate",
			expected: x509certs.ErrParseCertificate,
		},
		{
			name:     "Empty Input",
			input:    "  \n",
			expected: x509certs.ErrEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := x509certs.NewDecoder()
			_, err := decoder.Decode([]byte(tt.input))
			assert.ErrorIs(t, err, tt.expected, "expected specific error")
		})
	}
}

func TestDecoder_IsPEM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected bool
	}{
		{
			name:     "Valid PEM",
			input:    []byte(invalidCERT),
			expected: true,
		},
		{
			name:     "Invalid PEM",
			input:    []byte("not a pem block"),
			expected: false,
		},
		{
			name:     "Empty Input",
			input:    []byte(""),
			expected: false,
		},
		{
			name:     "PEM-like but invalid base64",
			input:    []byte("-----BEGIN CERTIFICATE-----\ninvalid-base64\n-----END CERTIFICATE-----"),
			expected: false,
		},
		{
			name:     "DER format (binary)",
			input:    []byte{0x30, 0x82, 0x01, 0x23},
			expected: false,
		},
	}

	decoder := x509certs.NewDecoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decoder.IsPEM(tt.input), "IsPEM() result incorrect")
		})
	}
}

func TestDecoder_Split(t *testing.T) {
	decoder := x509certs.NewDecoder()
	leaf := parseFixture(t, x509test.LeafCert)
	root := parseFixture(t, x509test.CACert)

	tests := []struct {
		name       string
		input      []byte
		expectDER  [][]byte
		expectErrs []error
	}{
		{
			name:       "Empty Input",
			input:      nil,
			expectDER:  nil,
			expectErrs: nil,
		},
		{
			name:       "Concatenated PEM Preserves Order",
			input:      x509test.Concat(t, x509test.LeafCert, x509test.CACert),
			expectDER:  [][]byte{leaf.Raw, root.Raw},
			expectErrs: []error{nil, nil},
		},
		{
			name:       "PEM Back To Back",
			input:      append(decoder.EncodePEM(root), decoder.EncodePEM(leaf)...),
			expectDER:  [][]byte{root.Raw, leaf.Raw},
			expectErrs: []error{nil, nil},
		},
		{
			name:       "Concatenated DER",
			input:      decoder.EncodeMultipleDER([]*x509.Certificate{leaf, root}),
			expectDER:  [][]byte{leaf.Raw, root.Raw},
			expectErrs: []error{nil, nil},
		},
		{
			name:       "Wrong Block Type Keeps Position",
			input:      append(x509test.PEM(t, x509test.LeafCert), invalidPEM...),
			expectDER:  [][]byte{leaf.Raw, nil},
			expectErrs: []error{nil, x509certs.ErrInvalidBlockType},
		},
		{
			name:       "Truncated Trailing Block",
			input:      append(x509test.PEM(t, x509test.LeafCert), truncatedCERT...),
			expectDER:  [][]byte{leaf.Raw, nil},
			expectErrs: []error{nil, x509certs.ErrInvalidPEMBlock},
		},
		{
			name:       "Garbage",
			input:      []byte("not a certificate"),
			expectDER:  [][]byte{nil},
			expectErrs: []error{x509certs.ErrParseCertificate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := decoder.Split(tt.input)
			require.Len(t, blocks, len(tt.expectDER), "unexpected block count")

			for i, block := range blocks {
				assert.Equal(t, tt.expectDER[i], block.DER, "block %d DER", i)
				if tt.expectErrs[i] == nil {
					assert.NoError(t, block.Err, "block %d", i)
				} else {
					assert.ErrorIs(t, block.Err, tt.expectErrs[i], "block %d", i)
				}
			}
		})
	}
}
