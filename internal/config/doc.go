// Package config loads the upstream credentials and client settings.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. an optional YAML file (--config or TICKFEWER_CONFIG)
//  3. a .env file in the working directory, if present
//  4. TICKTICK_* environment variables
//
// Command-line flags are applied on top by the cmd package.
//
// Example file:
//
//	v1:
//	  client_id: abc
//	  client_secret: def
//	  access_token: ghi
//	v2:
//	  username: me@example.com
//	  password: secret
//	timeout: 30s
//	rate_limit: 5
//	rate_burst: 10
package config
