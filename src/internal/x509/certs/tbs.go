// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	// ErrMalformedTBS indicates a TBSCertificate that could not be walked field by field.
	ErrMalformedTBS = errors.New("x509certs: malformed TBSCertificate")

	// ErrNotPrecert indicates a precertificate operation on a certificate without the poison extension.
	ErrNotPrecert = errors.New("x509certs: certificate is not a precertificate")

	// ErrSignerMissingAKI indicates a precertificate signing certificate without
	// an Authority Key Identifier while the precertificate has one to replace.
	ErrSignerMissingAKI = errors.New("x509certs: precertificate signing certificate has no authority key identifier")
)

var (
	tagVersion    = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	tagExtensions = cryptobyte_asn1.Tag(3).Constructed().ContextSpecific()
)

// issuerField is the position of the issuer Name among the TBSCertificate
// fields that follow the optional version.
const issuerField = 2

// tbsRewrite lists the edits applied while re-encoding a TBSCertificate.
type tbsRewrite struct {
	dropPoison bool
	issuer     []byte          // replacement issuer Name; nil keeps the original
	authKeyID  *pkix.Extension // replacement AKI extension; nil keeps the original
}

// rewriteTBS re-encodes raw with rw applied. Untouched fields are copied
// byte for byte, so the output is canonical whenever the input was.
func rewriteTBS(raw []byte, rw tbsRewrite) ([]byte, error) {
	input := cryptobyte.String(raw)
	var tbs cryptobyte.String
	if !input.ReadASN1(&tbs, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, ErrMalformedTBS
	}

	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		field := 0
		for first := true; !tbs.Empty(); first = false {
			var elem cryptobyte.String
			var tag cryptobyte_asn1.Tag
			if !tbs.ReadAnyASN1Element(&elem, &tag) {
				b.SetError(ErrMalformedTBS)
				return
			}

			switch {
			case first && tag == tagVersion:
				b.AddBytes(elem)
				continue
			case tag == tagExtensions:
				exts, err := rewriteExtensions(elem, rw)
				if err != nil {
					b.SetError(err)
					return
				}
				// Extensions is SIZE (1..MAX); drop the field when nothing is left.
				if len(exts) > 0 {
					b.AddASN1(tagExtensions, func(b *cryptobyte.Builder) {
						b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
							for _, ext := range exts {
								b.AddBytes(ext)
							}
						})
					})
				}
			case field == issuerField && rw.issuer != nil:
				b.AddBytes(rw.issuer)
			default:
				b.AddBytes(elem)
			}
			field++
		}
	})

	return b.Bytes()
}

// rewriteExtensions returns the encoded Extension elements of an [3]
// extensions field after rw has been applied.
func rewriteExtensions(field cryptobyte.String, rw tbsRewrite) ([][]byte, error) {
	var wrapper, seq cryptobyte.String
	if !field.ReadASN1(&wrapper, tagExtensions) ||
		!wrapper.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) ||
		!wrapper.Empty() {
		return nil, ErrMalformedTBS
	}

	var out [][]byte
	for !seq.Empty() {
		var ext cryptobyte.String
		if !seq.ReadASN1Element(&ext, cryptobyte_asn1.SEQUENCE) {
			return nil, ErrMalformedTBS
		}

		body := ext
		var fields cryptobyte.String
		var id asn1.ObjectIdentifier
		if !body.ReadASN1(&fields, cryptobyte_asn1.SEQUENCE) || !fields.ReadASN1ObjectIdentifier(&id) {
			return nil, ErrMalformedTBS
		}

		switch {
		case rw.dropPoison && id.Equal(OIDExtensionCTPoison):
			continue
		case rw.authKeyID != nil && id.Equal(oidExtensionAuthorityKeyID):
			enc, err := marshalExtension(rw.authKeyID)
			if err != nil {
				return nil, err
			}
			out = append(out, enc)
		default:
			out = append(out, ext)
		}
	}
	return out, nil
}

// marshalExtension encodes ext as a DER Extension, omitting a false critical
// flag as DER requires for DEFAULT values.
func marshalExtension(ext *pkix.Extension) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(ext.Id)
		if ext.Critical {
			b.AddASN1Boolean(true)
		}
		b.AddASN1OctetString(ext.Value)
	})
	return b.Bytes()
}

// TBSWithoutPoison returns the TBSCertificate re-encoded without the CT
// poison extension. Every other field is kept byte for byte, so for a
// precertificate this equals the TBSCertificate of the final certificate the
// same CA issues from it. A certificate without the poison is returned
// unchanged.
//
// This is not what the issuer signed; the signature on a precertificate
// covers the TBSCertificate with the poison present.
func (c *Certificate) TBSWithoutPoison() ([]byte, error) {
	if !c.IsLoaded() {
		return nil, ErrNotLoaded
	}
	return rewriteTBS(c.cert.RawTBSCertificate, tbsRewrite{dropPoison: true})
}

// PrecertTBS reconstructs the TBSCertificate a CT log records for this
// precertificate, following [RFC 6962] section 3.2.
//
// The poison extension is removed. When signer is a precertificate signing
// certificate, the issuer is replaced by the signer's issuer and the
// Authority Key Identifier by the signer's, so the result names the CA that
// issues the final certificate. Otherwise signer must be that CA and only
// the poison is removed.
//
// [RFC 6962]: https://www.rfc-editor.org/rfc/rfc6962#section-3.2
func (c *Certificate) PrecertTBS(signer *Certificate) ([]byte, error) {
	if !c.IsLoaded() || !signer.IsLoaded() {
		return nil, ErrNotLoaded
	}
	if !c.IsPrecert() {
		return nil, ErrNotPrecert
	}

	rw := tbsRewrite{dropPoison: true}
	if signer.IsPrecertSigner() {
		rw.issuer = signer.cert.RawIssuer
		if c.extension(oidExtensionAuthorityKeyID) != nil {
			aki := signer.extension(oidExtensionAuthorityKeyID)
			if aki == nil {
				return nil, ErrSignerMissingAKI
			}
			rw.authKeyID = aki
		}
	}

	return rewriteTBS(c.cert.RawTBSCertificate, rw)
}
