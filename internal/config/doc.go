// Package config provides configuration parsing for the varint service
// and command line tool.
//
// The configuration is stored in varint.json. Every field is optional;
// missing values fall back to the defaults returned by New.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "readTimeout": "10s",
//	    "writeTimeout": "10s",
//	    "shutdownTimeout": "5s",
//	    "maxBodyBytes": 1048576
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "varint"
//	  },
//	  "tracing": {
//	    "tracerName": "varint"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "s3": {
//	    "region": "us-east-1",
//	    "endpoint": "http://localhost:9000",
//	    "usePathStyle": true
//	  }
//	}
//
// # Environment
//
// VARINT_ADDR overrides server.addr. AWS_REGION, AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN configure S3 access.
package config
