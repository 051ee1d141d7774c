package providers

// Sink receives stream increments as they are decoded. Implementations are
// called from a single goroutine in source order; OnDone fires exactly once
// per stream, on every termination path, and marks the point at which the
// caller may release whatever resource the stream was feeding (typically an
// open HTTP response).
type Sink interface {
	// OnContent delivers a fragment of reply text.
	OnContent(text string)

	// OnThinking delivers a fragment of the backend's reasoning channel.
	OnThinking(text string)

	// OnDone signals end-of-stream. No callbacks follow it.
	OnDone()
}

// SinkFuncs adapts plain callbacks to the Sink interface. Nil functions are
// no-ops, so callers only wire the channels they care about.
type SinkFuncs struct {
	ContentFunc  func(text string)
	ThinkingFunc func(text string)
	DoneFunc     func()
}

// OnContent implements Sink.
func (s SinkFuncs) OnContent(text string) {
	if s.ContentFunc != nil {
		s.ContentFunc(text)
	}
}

// OnThinking implements Sink.
func (s SinkFuncs) OnThinking(text string) {
	if s.ThinkingFunc != nil {
		s.ThinkingFunc(text)
	}
}

// OnDone implements Sink.
func (s SinkFuncs) OnDone() {
	if s.DoneFunc != nil {
		s.DoneFunc()
	}
}
