// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/H0llyW00dzZ/ct-cert-checker/src/internal/x509/certs"
)

// StatusOK marks a chain entry whose checks passed.
const StatusOK = "ok"

// Status maps chain indexes to a short verification note, such as
// [StatusOK] or the reason a link failed. Renderers show "unknown" for
// indexes without a note.
type Status map[int]string

func (s Status) get(i int) string {
	if v, ok := s[i]; ok && v != "" {
		return v
	}
	return "unknown"
}

// RenderASCIITree renders the certificate chain as an ASCII tree diagram.
//
// Each entry is marked "✓" unless it failed to load or status carries a note
// other than [StatusOK] for it.
//
// Parameters:
//   - status: Optional per-index verification notes
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderASCIITree(status Status) string {
	certs := ch.Certificates()
	if len(certs) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range certs {
		connector := "├── "
		if i == len(certs)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if s, exists := status[i]; !cert.IsLoaded() || (exists && s != StatusOK) {
			statusIcon = "✗"
		}

		certInfo := fmt.Sprintf("[%s] %s", statusIcon, commonName(cert))
		if role := certificateRole(certs, i); role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}
		if s, exists := status[i]; exists && s != StatusOK {
			certInfo += ": " + s
		}

		result.WriteString(connector + certInfo + "\n")
	}

	return result.String()
}

// RenderTable renders the certificate chain as a formatted markdown table.
//
// It displays certificate details including role, subject, issuer, validity,
// key size and verification status in a tabular format using tablewriter.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderTable(status Status) string {
	certs := ch.Certificates()
	if len(certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	headers := []string{"🔢 #", "🏷️ Role", "📛 Subject", "🏢 Issuer", "📅 Valid Until", "🔐 Key Size", "✅ Status"}
	table.Header(headers)

	var rows [][]string
	for i, cert := range certs {
		validUntil := "-"
		issuer := "-"
		if cert.IsLoaded() {
			validUntil = cert.NotAfter().Format("2006-01-02")
			issuer = cert.Issuer().CommonName
		}
		_, keySize := describeKey(cert)

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			certificateRole(certs, i),
			commonName(cert),
			issuer,
			validUntil,
			keySize,
			status.get(i),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// CertificateVizData is one chain entry in the [Chain.ToVisualizationJSON] output.
type CertificateVizData struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Loaded             bool      `json:"loaded"`
	Error              string    `json:"error,omitempty"`
	Subject            string    `json:"subject,omitempty"`
	Issuer             string    `json:"issuer,omitempty"`
	SerialNumber       string    `json:"serialNumber,omitempty"`
	Fingerprint        string    `json:"sha256Fingerprint,omitempty"`
	SignatureAlgorithm string    `json:"signatureAlgorithm,omitempty"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm,omitempty"`
	KeySize            int       `json:"keySize,omitempty"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	IsCA               bool      `json:"isCA"`
	IsPrecert          bool      `json:"isPrecert"`
	IsPrecertSigner    bool      `json:"isPrecertSigner"`
	Status             string    `json:"status"`
}

// RelationshipData links two chain entries in the [Chain.ToVisualizationJSON] output.
type RelationshipData struct {
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
	Type      string `json:"type"`
}

// VisualizationData is the document produced by [Chain.ToVisualizationJSON].
type VisualizationData struct {
	Timestamp     string               `json:"timestamp"`
	ChainLength   int                  `json:"chainLength"`
	Loaded        bool                 `json:"loaded"`
	Ordered       bool                 `json:"ordered"`
	Certificates  []CertificateVizData `json:"certificates"`
	Relationships []RelationshipData   `json:"relationships"`
}

// ToVisualizationJSON converts the certificate chain to structured JSON for external tools.
//
// Relationships list every adjacent pair as "signed_by". They describe the
// order of the input, not verified linkage; pair them with status to tell
// the two apart.
//
// Parameters:
//   - status: Optional per-index verification notes
//
// Returns:
//   - []byte: JSON representation of the certificate chain
//   - error: Error if JSON marshaling fails
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) ToVisualizationJSON(status Status) ([]byte, error) {
	certs := ch.Certificates()

	data := VisualizationData{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ChainLength:   len(certs),
		Loaded:        allLoaded(certs),
		Ordered:       ch.IsOrdered(),
		Certificates:  make([]CertificateVizData, len(certs)),
		Relationships: make([]RelationshipData, 0, len(certs)),
	}

	for i, cert := range certs {
		viz := CertificateVizData{
			Index:  i,
			Role:   certificateRole(certs, i),
			Loaded: cert.IsLoaded(),
			Status: status.get(i),
		}

		if !cert.IsLoaded() {
			viz.Error = cert.Err().Error()
			data.Certificates[i] = viz
			continue
		}

		fp := cert.Fingerprint()
		x := cert.X509()
		viz.Subject = cert.SubjectName()
		viz.Issuer = cert.IssuerName()
		viz.SerialNumber = x.SerialNumber.String()
		viz.Fingerprint = hex.EncodeToString(fp[:])
		viz.SignatureAlgorithm = x.SignatureAlgorithm.String()
		viz.PublicKeyAlgorithm, _ = describeKey(cert)
		viz.KeySize = keyBits(cert)
		viz.NotBefore = x.NotBefore
		viz.NotAfter = x.NotAfter
		viz.IsCA = cert.IsCA()
		viz.IsPrecert = cert.IsPrecert()
		viz.IsPrecertSigner = cert.IsPrecertSigner()
		data.Certificates[i] = viz
	}

	for i := 0; i+1 < len(certs); i++ {
		data.Relationships = append(data.Relationships, RelationshipData{
			FromIndex: i,
			ToIndex:   i + 1,
			Type:      "signed_by",
		})
	}

	return json.MarshalIndent(data, "", "  ")
}

// Role names used by the renderers.
const (
	RoleUnparsed      = "Unparsed Certificate"
	RoleSelfSigned    = "Self-Signed Certificate"
	RoleLeaf          = "End-Entity (Server/Leaf) Certificate"
	RolePrecert       = "Precertificate"
	RolePrecertSigner = "Precertificate Signing CA"
	RoleIntermediate  = "Intermediate CA Certificate"
	RoleRoot          = "Root CA Certificate"
)

// certificateRole determines the role of the certificate at index within certs.
//
// Markers win over position: a poisoned leaf is a precertificate and an
// entry with the precertificate signing EKU is a signing CA wherever it sits.
// The last entry counts as a root only when it is self-signed.
func certificateRole(certs []*x509certs.Certificate, index int) string {
	cert := certs[index]
	total := len(certs)

	switch {
	case !cert.IsLoaded():
		return RoleUnparsed
	case index == 0 && cert.IsPrecert():
		return RolePrecert
	case cert.IsPrecertSigner():
		return RolePrecertSigner
	case total == 1 && cert.IsSelfSigned():
		return RoleSelfSigned
	case index == 0:
		return RoleLeaf
	case index == total-1 && cert.IsSelfSigned():
		return RoleRoot
	default:
		return RoleIntermediate
	}
}

func commonName(cert *x509certs.Certificate) string {
	if !cert.IsLoaded() {
		return "<unparsed>"
	}
	if cn := cert.Subject().CommonName; cn != "" {
		return cn
	}
	return cert.SubjectName()
}

// describeKey returns the public key algorithm and a human-readable size.
func describeKey(cert *x509certs.Certificate) (algo, size string) {
	switch key := cert.PublicKey().(type) {
	case *rsa.PublicKey:
		return "RSA", fmt.Sprintf("%d-bit RSA", key.Size()*8)
	case *ecdsa.PublicKey:
		return "ECDSA", fmt.Sprintf("%d-bit ECDSA", key.Curve.Params().BitSize)
	case ed25519.PublicKey:
		return "Ed25519", "256-bit Ed25519"
	default:
		return "unknown", "unknown"
	}
}

func keyBits(cert *x509certs.Certificate) int {
	switch key := cert.PublicKey().(type) {
	case *rsa.PublicKey:
		return key.Size() * 8
	case *ecdsa.PublicKey:
		return key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return 256
	default:
		return 0
	}
}
