// Package config provides configuration parsing for toastd.
//
// The configuration is stored in toastkit.json (or toastkit.yaml) in the
// working directory. This package handles loading, saving, and validating
// configuration. Durations are strings in time.ParseDuration syntax.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "address": "localhost:7300",
//	    "shutdownTimeout": "10s",
//	    "allowedOrigins": ["https://dash.example.com"]
//	  },
//	  "toasts": {
//	    "maxToasts": 5,
//	    "defaultDuration": "5s",
//	    "position": "top-right",
//	    "mobileBreakpoint": 768,
//	    "swipeThreshold": 100,
//	    "copyFeedback": "2s",
//	    "clipboardTimeout": "5s"
//	  },
//	  "log": {"level": "info", "format": "console"},
//	  "metrics": {"enabled": true, "namespace": "toastkit"},
//	  "tracing": {"enabled": false, "tracerName": "toastd"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
