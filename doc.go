// Package streamgate provides a read-only HTTP gateway that streams objects
// out of an S3-compatible object store.
//
// A request path maps directly to an object key in a single configured
// bucket. The object body is relayed to the client as it arrives from the
// backend, so memory use does not depend on object size.
//
// # Key Components
//
//   - Fetcher: Interface for the storage backend (see the s3 and minio packages)
//   - Gateway: Resolves keys against the configured bucket and applies fetch deadlines
//   - FetchError: Structured failure carrying the failure kind and the backend error
//
// # Failure Kinds
//
// Every error returned by a Fetcher or the Gateway matches exactly one of
// ErrInvalidInput, ErrNotFound, ErrUnauthorized, ErrConfiguration,
// ErrUpstream or ErrClientDisconnected via errors.Is. FailureKind turns an
// error into the label used in logs and metrics.
//
// # Example Usage
//
//	gw, err := streamgate.NewGateway(fetcher, streamgate.GatewayConfig{Bucket: "reports"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	obj, err := gw.Get(ctx, "2024/report.pdf")
//	if err != nil {
//	    return err
//	}
//	defer obj.Body.Close()
//
// See the http package for the streaming request handler.
package streamgate
