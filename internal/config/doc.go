// Package config provides configuration parsing for the isodom CLI and
// websocket bridge.
//
// The configuration is stored in isodom.yaml (or isodom.json) and selects
// the listen address, the render root id, the demo application and the
// observability settings.
//
// # Configuration File Structure
//
//	addr: localhost:8080
//	rootId: app
//	logLevel: debug
//	demo: recursive
//	depth: 3
//	metrics:
//	  enabled: true
//	  namespace: isodom
//	  path: /metrics
//	loop:
//	  queueSize: 256
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Addr)
package config
