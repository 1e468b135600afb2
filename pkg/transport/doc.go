// Package transport is the HTTP client handle the builder connects with.
//
// A Client is constructed from resolved connection arguments. It talks to
// the first reachable host of its pool and exposes the three calls the
// connection checks need:
//
//	client, err := transport.New(args, transport.WithLogger(logger))
//	version, err := client.Version(ctx)
//	local, err := client.LocalNodeID(ctx)
//	master, err := client.MasterNodeID(ctx)
//
// Retries are delegated to go-retryablehttp and follow max_retries,
// retry_on_status and retry_on_timeout. Backoff between attempts grows from
// dead_node_backoff_factor seconds up to max_dead_node_backoff seconds.
package transport
