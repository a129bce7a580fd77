// Package config loads the resilience layer's startup configuration from a
// YAML file and validates it before anything touches the network.
//
// A minimal file:
//
//	api:
//	  base_url: https://api.example.com/v2
//	oauth:
//	  token_url: https://auth.example.com/oauth/token
//	  client_id: my-service
//	  client_secret: ${EXAMPLE_CLIENT_SECRET}
//	budget:
//	  capacity: 200
//	  window: 60s
//	  throttle_threshold: 0.7
//
// ${VAR} references are expanded from the environment and fail loudly when
// unset; `$$` escapes a literal dollar. Durations use Go syntax ("500ms",
// "1m"). Fields left out fall back to the same defaults the component
// constructors apply, so a config file only needs to say what differs.
package config
