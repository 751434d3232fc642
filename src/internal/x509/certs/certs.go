// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrEmptyInput indicates that no certificate data was supplied.
	ErrEmptyInput = errors.New("x509certs: empty input")
)

// pemBeginMarker is the prefix shared by every PEM encapsulation boundary.
var pemBeginMarker = []byte("-----BEGIN ")

// Block is one certificate-sized unit split out of a bundle.
//
// Exactly one of DER or Err is set. A Block with Err set stands for input
// that looked like a certificate but could not be decoded, so callers can
// keep its position in a chain.
type Block struct {
	DER []byte
	Err error
}

// Decoder provides methods to decode and encode [X.509] certificates.
// It maintains internal configuration such as the certificate block type.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Decoder struct {
	certBlockType string
}

// NewDecoder creates a new Decoder with default settings.
func NewDecoder() *Decoder {
	return &Decoder{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (d *Decoder) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// decodePEMBlock decodes a PEM block and checks its type.
func (d *Decoder) decodePEMBlock(data []byte) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMBlock
	}
	if block.Type != d.certBlockType {
		return nil, ErrInvalidBlockType
	}
	return block, nil
}

// Split breaks data into per-certificate blocks, preserving their order.
//
// PEM input yields one Block per encapsulated block; a block of the wrong
// type, or a truncated trailing block, yields a Block carrying the error.
// Non-PEM input is tried as concatenated DER and then as a PKCS7 bundle.
// Empty input yields no blocks.
func (d *Decoder) Split(data []byte) []Block {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if !d.IsPEM(data) {
		return d.splitBinary(data)
	}

	var blocks []Block
	rest := data
	for len(rest) > 0 {
		block, remainder := pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != d.certBlockType {
			blocks = append(blocks, Block{Err: ErrInvalidBlockType})
		} else {
			blocks = append(blocks, Block{DER: block.Bytes})
		}
		rest = remainder
	}

	// pem.Decode gives up silently on a damaged block; surface it instead of
	// pretending the bundle ended early.
	if bytes.Contains(rest, pemBeginMarker) {
		blocks = append(blocks, Block{Err: ErrInvalidPEMBlock})
	}

	return blocks
}

// splitBinary handles DER and PKCS7 input for Split.
func (d *Decoder) splitBinary(data []byte) []Block {
	if certs, err := x509.ParseCertificates(data); err == nil {
		blocks := make([]Block, 0, len(certs))
		for _, cert := range certs {
			blocks = append(blocks, Block{DER: cert.Raw})
		}
		return blocks
	}

	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return []Block{{Err: ErrParseCertificate}}
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return []Block{{Err: ErrNoCertificatesInPKCS}}
	}

	blocks := make([]Block, 0, len(p.Content.SignedData.Certificates))
	for _, cert := range p.Content.SignedData.Certificates {
		blocks = append(blocks, Block{DER: cert.Raw})
	}
	return blocks
}

// Decode decodes a single certificate from data.
//
// For PEM input only the first block is considered.
func (d *Decoder) Decode(data []byte) (*x509.Certificate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	if d.IsPEM(data) {
		block, err := d.decodePEMBlock(data)
		if err != nil {
			return nil, err
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, ErrParseCertificate
		}
		return cert, nil
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParseCertificate
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	return p.Content.SignedData.Certificates[0], nil
}

// EncodePEM encodes a certificate to PEM format.
func (d *Decoder) EncodePEM(cert *x509.Certificate) []byte {
	block := pem.Block{
		Type:  d.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (d *Decoder) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, d.EncodePEM(cert)...)
	}

	return data
}

// EncodeMultipleDER concatenates the DER encodings of certs.
func (d *Decoder) EncodeMultipleDER(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, cert.Raw...)
	}

	return data
}
