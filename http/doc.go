// Package http provides the streaming HTTP front end of the gateway.
//
// A single route, GET /{key}, maps the request path to an object key and
// relays the object body from the backend to the client in bounded chunks.
//
// # Features
//
//   - Streaming relay with a pooled, fixed-size buffer and per-chunk flushing
//   - Content-Type, Content-Disposition and Accept-Ranges passed through only
//     when the backend reports them
//   - Plain-text error responses that never include backend error details
//   - Request ids (X-Request-Id) and one access log line per request
//   - Configurable CORS support (permissive by default)
//
// # Status Codes
//
//   - 200: object found, body streamed
//   - 400: empty, whitespace-only or malformed key; the backend is not called
//   - 403: the backend denied access
//   - 404: the backend has no such key
//   - 500: missing bucket configuration or backend failure before headers
//
// A backend failure after the status line has been sent aborts the
// connection, so the client observes a truncated body. A client that
// disconnects mid-stream causes the backend stream to be closed promptly.
//
// # Usage
//
//	gw, _ := streamgate.NewGateway(fetcher, streamgate.GatewayConfig{Bucket: "reports"})
//	handler := http.NewHandler(&http.HandlerConfig{}, gw)
//	http.ListenAndServe(":3000", handler.Router())
//
// The service parameter must implement the Service interface;
// *streamgate.Gateway does.
package http
