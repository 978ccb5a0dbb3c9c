// Package config loads runtime configuration with viper.
//
// Values come from defaults, an optional YAML/TOML/JSON file and WASMDOM_
// environment variables. The document section describes the headless
// document the guest runs against, either inline or through
// document_file:
//
//	width: 8
//	guest:
//	  path: app.wasm
//	document:
//	  window:
//	    rect: {width: 800, height: 600}
//	  elements:
//	    - id: canvas
//	      rect: {width: 640, height: 480}
package config
