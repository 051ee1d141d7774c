// Package selfhosted implements the adapter for the self-hosted chat API.
//
// The backend streams newline-delimited JSON: one {message:{content,
// thinking}, done} value per line, with a top-level done flag instead of a
// sentinel line. Model listing is GET /api/tags returning {models:[{name}]}
// and bulk chat is POST /api/chat returning {message:{content}}.
//
// Unlike the cloud backend, this one takes image attachments as a
// message-level list of raw base64 strings rather than inline content
// parts, and sampling parameters nested under "options"; adaptMessages and
// buildPayload handle both conversions.
//
// Not every model behind this backend supports the thinking channel. When a
// request with think enabled fails with the backend's "does not support
// thinking" error, the adapter resends the identical request once with
// think disabled, for bulk and streaming calls alike. Any other failure is
// terminal.
package selfhosted
