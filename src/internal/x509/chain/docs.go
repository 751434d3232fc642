// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain holds leaf-first [X.509] certificate chains as supplied
// by a submitter. It provides:
//   - [Chain], built from PEM, concatenated DER or PKCS#7 input, which keeps
//     failed entries in place and grows only by appending.
//   - [PrecertChain], which adds the Certificate Transparency [precertificate]
//     shape check: a poisoned leaf followed by its signing certificate.
//   - ASCII tree, markdown table and JSON renderings for diagnostics.
//
// The package proves nothing about signatures or trust; that is the job of
// the checker package.
//
// [X.509]: https://grokipedia.com/page/X.509
// [precertificate]: https://www.rfc-editor.org/rfc/rfc6962#section-3.1
package x509chain
