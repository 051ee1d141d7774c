// Package providers defines the provider-agnostic chat contract and the
// shared machinery every backend adapter is built from.
//
// The package has three layers:
//
//   - The normalized data model (ChatRequest, Message, ContentPart, ModelInfo,
//     Increment) that the rest of the system speaks regardless of backend.
//   - The Provider interface, implemented once per backend wire format
//     (see the cloud and selfhosted subpackages).
//   - Backend-neutral plumbing: a pooled HTTP client base (Client), the
//     streaming line reducer (ReduceStream), and the typed error taxonomy.
//
// A Provider instance is constructed per request by pkg/providerfactory and
// holds no state beyond its resolved credential and endpoint, so no
// synchronization is needed across requests.
//
// # Streaming
//
// Streaming responses are consumed through the Sink interface. Each backend
// supplies a LineParser that turns one line of its wire format into an
// Increment; ReduceStream handles line reassembly across chunk boundaries and
// guarantees that Sink.OnDone is invoked exactly once on every path, which is
// what callers rely on to release the underlying HTTP response:
//
//	err := provider.StreamResponse(ctx, req, providers.SinkFuncs{
//	    ContentFunc: func(text string) { fmt.Print(text) },
//	    DoneFunc:    func() { close(out) },
//	})
package providers
