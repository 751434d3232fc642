// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs wraps parsed [X.509] certificates for chain checking.
//
// A [Certificate] is either fully loaded or in a failed state; it is never
// exposed half-parsed. Beyond the usual identity accessors it reports the
// Certificate Transparency markers used by precertificate validation: the
// critical poison extension ([RFC 6962] section 3.1) and the precertificate
// signing extended key usage. It can also re-encode a precertificate's
// TBSCertificate with the poison removed, which is the form a CT log stores.
//
// The [Decoder] handles the input formats accepted by chains and trust
// stores: [PEM] blocks, raw DER and [PKCS7] bundles.
//
// [X.509]: https://grokipedia.com/page/X.509
// [RFC 6962]: https://www.rfc-editor.org/rfc/rfc6962
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
