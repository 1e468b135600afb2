package builder

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/security/secrets"
	"github.com/esclient-go/esclient/pkg/security/tls"
)

// migrateSecrets moves credential values out of the settings and the
// validated document into the secret store.
func (b *Builder) migrateSecrets(ctx context.Context) error {
	client := b.block("client")

	if b.client.BasicAuth != nil {
		if err := b.secrets.Store(secrets.BasicAuth, b.client.BasicAuth); err != nil {
			return clienterr.WrapClient(err, "Unable to store basic_auth")
		}
		b.client.BasicAuth = nil
		client["basic_auth"] = nil
	}
	if b.client.APIKey != nil {
		if err := b.secrets.Store(secrets.APIKey, b.client.APIKey); err != nil {
			return clienterr.WrapClient(err, "Unable to store api_key")
		}
		b.client.APIKey = nil
		client["api_key"] = nil
	}
	if b.client.BearerAuth != nil {
		if err := b.secrets.Store(secrets.BearerAuth, *b.client.BearerAuth); err != nil {
			return clienterr.WrapClient(err, "Unable to store bearer_auth")
		}
		b.client.BearerAuth = nil
		client["bearer_auth"] = nil
	}
	if b.other.Password != nil {
		if err := b.secrets.Store(secrets.Password, *b.other.Password); err != nil {
			return clienterr.WrapClient(err, "Unable to store password")
		}
		b.other.Password = nil
		b.block("other_settings")["password"] = nil
	}

	b.logger.DebugContext(ctx, "secrets migrated", "entries", b.secrets.Names())
	return nil
}

// normalizeHosts rewrites every host as scheme://host:port. client.port,
// when set, replaces the scheme default for hosts without a port.
func (b *Builder) normalizeHosts(ctx context.Context) error {
	if len(b.client.Hosts) == 0 {
		return nil
	}
	port := config.Deref(b.client.Port)

	hosts := make([]string, 0, len(b.client.Hosts))
	for _, h := range b.client.Hosts {
		normalized, err := config.NormalizeHost(h, port)
		if err != nil {
			b.logger.Critical("invalid host schema", "host", h)
			return clienterr.WrapConfig(err, msgInvalidHostSchema, h)
		}
		hosts = append(hosts, normalized)
	}

	b.client.Hosts = hosts
	list := make([]any, len(hosts))
	for i, h := range hosts {
		list[i] = h
	}
	b.block("client")["hosts"] = list
	return nil
}

// apiKeyBlock returns the api_key sub-map of the validated other_settings.
func (b *Builder) apiKeyBlock() map[string]any {
	other := b.block("other_settings")
	m, ok := other["api_key"].(map[string]any)
	if !ok {
		m = map[string]any{}
		other["api_key"] = m
	}
	return m
}

// composeAPIKey derives the api_key credential from other_settings.api_key.
// A token wins over id/api_key; consumed key material is cleared.
func (b *Builder) composeAPIKey(ctx context.Context) error {
	raw := b.other.APIKey
	if raw == nil {
		return nil
	}

	if token := config.Deref(raw.Token); token != "" {
		id, key, err := parseAPIKeyToken(token)
		if err != nil {
			b.logger.ErrorContext(ctx, "unable to parse base64 API Key Token; the format must be <id>:<api_key>")
			return err
		}
		if err := b.secrets.Store(secrets.APIKey, []string{id, key}); err != nil {
			return clienterr.WrapClient(err, "Unable to store api_key")
		}
		b.clearAPIKeyMaterial()
		return nil
	}

	switch {
	case raw.ID == nil && raw.APIKey == nil:
		// Keep a pair migrated from client.api_key or derived earlier.
		if !b.secrets.Has(secrets.APIKey) {
			if err := b.secrets.Store(secrets.APIKey, nil); err != nil {
				return clienterr.WrapClient(err, "Unable to store api_key")
			}
		}
	case raw.ID == nil || raw.APIKey == nil:
		return clienterr.Configf(msgBothAPIKey)
	default:
		if err := b.secrets.Store(secrets.APIKey, []string{*raw.ID, *raw.APIKey}); err != nil {
			return clienterr.WrapClient(err, "Unable to store api_key")
		}
		b.clearAPIKeyMaterial()
	}
	return nil
}

func (b *Builder) clearAPIKeyMaterial() {
	b.other.APIKey.Token = nil
	b.other.APIKey.ID = nil
	b.other.APIKey.APIKey = nil
	block := b.apiKeyBlock()
	for _, k := range []string{"token", "id", "api_key"} {
		if _, ok := block[k]; ok {
			block[k] = nil
		}
	}
}

// parseAPIKeyToken decodes base64("id:api_key").
func parseAPIKeyToken(token string) (id, key string, err error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", "", clienterr.WrapConfig(err, msgBadToken)
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 2 {
		return "", "", clienterr.Configf("%s: expected <id>:<api_key>", msgBadToken)
	}
	return parts[0], parts[1], nil
}

// composeBasicAuth pairs other_settings.username with the stored password.
func (b *Builder) composeBasicAuth(ctx context.Context) error {
	password, err := b.secrets.Text(secrets.Password)
	if err != nil {
		return clienterr.WrapClient(err, "Unable to read password")
	}
	username := b.other.Username

	switch {
	case username == nil && password == nil:
		return nil
	case username == nil || password == nil:
		b.logger.ErrorContext(ctx, msgBothAuth)
		return clienterr.Configf(msgBothAuth)
	}
	if err := b.secrets.Store(secrets.BasicAuth, []string{*username, *password}); err != nil {
		return clienterr.WrapClient(err, "Unable to store basic_auth")
	}
	return nil
}

// checkCloudID enforces that cloud_id and an explicit host list are not both
// set. The default host list does not count as explicit.
func (b *Builder) checkCloudID(ctx context.Context) error {
	client := b.block("client")

	if b.client.CloudID == nil {
		if len(b.client.Hosts) == 0 {
			b.client.Hosts = config.DefaultHosts()
			client["hosts"] = []any{config.DefaultHost}
		}
		return nil
	}

	if config.IsDefaultHosts(b.client.Hosts) {
		b.client.Hosts = nil
		client["hosts"] = nil
	}
	if b.client.Hosts != nil {
		b.logger.ErrorContext(ctx, msgHostsAndCloudID, "hosts", b.client.Hosts)
		return clienterr.Configf(msgHostsAndCloudID)
	}
	return nil
}

// resolveTLS checks that configured certificate files are readable and
// falls back to the system CA bundle for https without ca_certs.
func (b *Builder) resolveTLS(ctx context.Context) error {
	cfg := tls.FromSettings(b.client)
	if err := cfg.VerifyPaths(); err != nil {
		b.logger.Critical("TLS file not readable", "error", err)
		return err
	}

	if b.client.Scheme() == "https" && cfg.CACerts == "" {
		if bundle := tls.SystemCABundle(); bundle != "" {
			b.client.CACerts = config.Ptr(bundle)
			b.block("client")["ca_certs"] = bundle
			b.logger.DebugContext(ctx, "using system CA bundle", "ca_certs", bundle)
		} else {
			b.logger.WarnContext(ctx, "no system CA bundle found; relying on the platform trust store")
		}
	}

	for _, path := range []string{cfg.CACerts, cfg.ClientCert} {
		if path == "" {
			continue
		}
		if warning, err := tls.ExpiryWarning(path); err == nil && warning != "" {
			b.logger.WarnContext(ctx, "certificate expiring soon", "path", path, "warning", warning)
		}
	}

	if b.client.SSLVersion != nil {
		b.logger.WarnContext(ctx, "ssl_version only sets the minimum TLS version")
	}
	return nil
}
