// Package builder resolves a client configuration and connects with it.
//
// Build selects one configuration source (an in-memory document, a YAML
// file, or the built-in default), validates it, moves credential material
// into an encrypted secret store and applies the resolution rules:
//
//   - hosts are normalized to scheme://host:port
//   - an API key token takes precedence over id/api_key
//   - username and password are required together
//   - cloud_id and an explicitly configured host list are mutually exclusive
//   - https without ca_certs falls back to the system CA bundle
//
// Connect then creates the client and checks that the server version lies
// in [VersionMin, VersionMax) and, with master_only, that the single
// configured host is the elected master.
//
//	b, err := builder.Build(ctx, builder.Options{ConfigFile: "es.yml"})
//	if err != nil {
//		return err
//	}
//	if err := b.Connect(ctx); err != nil {
//		return err
//	}
//
// A Builder is not safe for concurrent mutation. Independent Builders share
// no state.
package builder
