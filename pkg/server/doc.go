// Package server exposes the varint codec over HTTP and WebSocket.
//
// Routes:
//
//	GET  /healthz                  liveness probe
//	GET  /metrics                  Prometheus metrics (when a Gatherer is set)
//	POST /v1/encode/{kind}         whitespace separated decimals -> encoded bytes
//	POST /v1/decode/{kind}         encoded bytes -> {"values":[...],"consumed":N}
//	GET  /v1/size/{kind}/{value}   encoded size of one value
//	GET  /v1/stream/{kind}         WebSocket echo of re-encoded values
//
// {kind} accepts the names understood by varint.ParseKind. Decoded
// values are JSON numbers printed exactly, so 64-bit values keep every
// digit.
package server
