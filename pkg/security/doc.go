/*
Package security groups the credential and transport security packages used
while resolving a client configuration.

# TLS

tls checks certificate paths, falls back to the system CA bundle and builds
the crypto/tls configuration the transport dials with:

	settings := tls.FromSettings(args)
	if err := settings.VerifyPaths(); err != nil {
		return err
	}
	tlsConfig, err := settings.ToTLSConfig()

# Secrets

secrets holds credentials encrypted in memory so the resolved configuration
never carries them in clear text:

	store, err := secrets.NewStore()
	if err != nil {
		return err
	}
	_ = store.Store(secrets.Password, "changeme")
	pw, _ := store.Text(secrets.Password)
*/
package security
