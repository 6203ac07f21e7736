// Package config provides configuration parsing for autotrack.
//
// The configuration is stored in autotrack.json in the working directory.
// Every field is optional; a missing file yields the defaults.
//
// # Configuration File Structure
//
//	{
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "title": "autotrack"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "autotrack"
//	  },
//	  "tracing": {
//	    "tracer": "autotrack"
//	  },
//	  "snapshot": {
//	    "dir": "snapshots",
//	    "bucket": "",
//	    "prefix": "graphs/",
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000",
//	    "pathStyle": true
//	  },
//	  "log": {
//	    "level": "info"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.DevAddress())
package config
