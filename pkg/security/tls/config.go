package tls

import (
	"bytes"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
)

// Config holds the TLS settings of one client.
type Config struct {
	// CACerts is the path to a PEM bundle of trusted CAs.
	CACerts string

	// ClientCert and ClientKey are PEM paths for client authentication.
	ClientCert string
	ClientKey  string

	// VerifyCerts disables all server verification when false.
	VerifyCerts bool

	// AssertHostname overrides the name checked against the server
	// certificate.
	AssertHostname string

	// AssertFingerprint is a hex SHA-256 of the server leaf certificate,
	// colons allowed.
	AssertFingerprint string

	// MinVersion is the minimum TLS version ("1.2", "TLSv1.2", "1.3", ...).
	// Default: "1.2"
	MinVersion string
}

// FromSettings extracts the TLS settings of a client block.
func FromSettings(c *config.ClientSettings) *Config {
	verify := true
	if c.VerifyCerts != nil {
		verify = *c.VerifyCerts
	}
	return &Config{
		CACerts:           config.Deref(c.CACerts),
		ClientCert:        config.Deref(c.ClientCert),
		ClientKey:         config.Deref(c.ClientKey),
		VerifyCerts:       verify,
		AssertHostname:    config.Deref(c.SSLAssertHostname),
		AssertFingerprint: config.Deref(c.SSLAssertFingerprint),
		MinVersion:        config.Deref(c.SSLVersion),
	}
}

// VerifyPaths checks that every configured file can be opened for reading.
func (c *Config) VerifyPaths() error {
	for _, p := range []struct{ key, path string }{
		{"ca_certs", c.CACerts},
		{"client_cert", c.ClientCert},
		{"client_key", c.ClientKey},
	} {
		if p.path == "" {
			continue
		}
		f, err := os.Open(p.path)
		if err != nil {
			return clienterr.WrapConfig(err, "\"%s: %s\" File not found!", p.key, p.path)
		}
		_ = f.Close()
	}
	return nil
}

// ToTLSConfig converts Config to crypto/tls.Config.
func (c *Config) ToTLSConfig() (*tls.Config, error) {
	minVersion, err := parseTLSVersion(c.MinVersion)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - InsecureSkipVerify follows verify_certs or is replaced by fingerprint pinning
	tlsConfig := &tls.Config{
		MinVersion:         minVersion,
		ServerName:         c.AssertHostname,
		InsecureSkipVerify: !c.VerifyCerts,
	}

	if c.CACerts != "" {
		pem, err := os.ReadFile(c.CACerts)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca_certs: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse ca_certs %s: no certificates found", c.CACerts)
		}
		tlsConfig.RootCAs = pool
	}

	if c.ClientCert != "" || c.ClientKey != "" {
		if c.ClientCert == "" || c.ClientKey == "" {
			return nil, fmt.Errorf("client_cert and client_key must be set together")
		}
		cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		if err := ValidateCertificate(&cert); err != nil {
			return nil, fmt.Errorf("client certificate validation failed: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if c.AssertFingerprint != "" {
		want, err := parseFingerprint(c.AssertFingerprint)
		if err != nil {
			return nil, err
		}
		tlsConfig.InsecureSkipVerify = true
		tlsConfig.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return fmt.Errorf("server presented no certificate")
			}
			got := sha256.Sum256(rawCerts[0])
			if !bytes.Equal(got[:], want) {
				return fmt.Errorf("server certificate fingerprint %x does not match ssl_assert_fingerprint", got)
			}
			return nil
		}
	}

	return tlsConfig, nil
}

// parseTLSVersion accepts the spellings used by Python's ssl module as well
// as bare numbers.
func parseTLSVersion(v string) (uint16, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	norm = strings.TrimPrefix(norm, "PROTOCOL_")
	norm = strings.TrimPrefix(norm, "TLSV")
	norm = strings.ReplaceAll(norm, "_", ".")

	switch norm {
	case "", "1.2", "TLS", "TLS.CLIENT":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		// TLS 1.0 and 1.1 are not supported.
		return 0, fmt.Errorf("unsupported ssl_version %q", v)
	}
}

func parseFingerprint(fp string) ([]byte, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(fp), ":", "")
	b, err := hex.DecodeString(clean)
	if err != nil || len(b) != sha256.Size {
		return nil, fmt.Errorf("ssl_assert_fingerprint must be a hex SHA-256 digest")
	}
	return b, nil
}

// systemBundles are the usual locations of the platform PEM bundle.
var systemBundles = []string{
	"/etc/ssl/certs/ca-certificates.crt",
	"/etc/pki/tls/certs/ca-bundle.crt",
	"/etc/ssl/ca-bundle.pem",
	"/etc/pki/tls/cacert.pem",
	"/etc/pki/ca-trust/extracted/pem/tls-ca-bundle.pem",
	"/etc/ssl/cert.pem",
}

// SystemCABundle returns the path of the system CA bundle, or "" when none
// exists. SSL_CERT_FILE takes precedence.
func SystemCABundle() string {
	candidates := systemBundles
	if env := os.Getenv("SSL_CERT_FILE"); env != "" {
		candidates = append([]string{env}, candidates...)
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}
