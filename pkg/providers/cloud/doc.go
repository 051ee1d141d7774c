// Package cloud implements the adapter for the cloud chat API.
//
// The backend speaks an OpenAI-style wire format: bulk responses carry the
// reply at choices[0].message.content, streaming responses are
// Server-Sent-Events-style lines prefixed "data: " with a terminal literal
// "data: [DONE]", and model listing is GET /v1/models returning {data:[{id}]}.
//
// Requests map almost 1:1 from the normalized model: the backend accepts the
// same multi-part content shape for image-bearing messages, so messages pass
// through unchanged and only the token-limit field is renamed.
//
// The cloud backend has no unsupported-feature retry; any failure is
// terminal. That asymmetry with the selfhosted package is deliberate.
package cloud
