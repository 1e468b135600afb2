/*
Package tls resolves the TLS material of an Elasticsearch client.

# Client Configuration

Build a crypto/tls configuration from the client block:

	cfg := tls.FromSettings(clientSettings)
	if err := cfg.VerifyPaths(); err != nil {
		return err // names the missing key and file
	}
	tlsConfig, err := cfg.ToTLSConfig()

VerifyCerts defaults to true. Setting ssl_assert_fingerprint pins the server
leaf certificate by SHA-256 and replaces chain verification.

# System CA Bundle

When an https host is configured without ca_certs, SystemCABundle finds the
platform's PEM bundle (honouring SSL_CERT_FILE) so the resolved
configuration names the file actually trusted.

# Certificate Checks

ValidateCertificate rejects client certificates that are expired or not yet
valid; CheckCertificateExpiration reports ones expiring within 30 days.
*/
package tls
