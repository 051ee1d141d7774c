// Package handlers implements the relay's HTTP front door.
//
// The handlers translate the external wire format into the normalized
// request model, construct a provider per request through the factory, and
// forward the provider's output back to the caller. For streaming requests
// the reply is newline-delimited JSON, one increment per line, flushed as
// it arrives, with a terminal {"done":true} line written when the
// provider's sink is closed.
package handlers
