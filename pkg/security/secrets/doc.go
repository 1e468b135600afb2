/*
Package secrets keeps credential material out of the plain configuration
object graph.

# Overview

A Store is an in-process, encrypted key/value map. Each Store generates its
own 256-bit key when it is created; values are JSON-encoded and sealed with
NaCl secretbox (XSalsa20-Poly1305) under a fresh random nonce per write.
Nothing is persisted and the key is never exported, logged or formatted.

Entries are named after the configuration field they replace:

  - basic_auth: a [username, password] pair
  - api_key: an [id, api_key] pair
  - bearer_auth: a token string
  - password: the raw password from other_settings

# Usage

	store, err := secrets.NewStore()
	if err != nil {
		return err
	}
	if err := store.Store(secrets.BasicAuth, []string{"elastic", "changeme"}); err != nil {
		return err
	}

	pair, err := store.Pair(secrets.BasicAuth)

Writing a name again replaces the previous value. Storing nil is allowed and
records an explicit null, which Retrieve reports as found.

# Concurrency

A Store is owned by exactly one Builder and is not safe for concurrent
mutation. Independent Builders own independent Stores and keys.
*/
package secrets
