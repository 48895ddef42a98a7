// Package speech is the boundary to the voice-output collaborator. The
// router forwards final response text here fire-and-forget when avatar
// voice mode is active; delivery failures never affect the dispatch.
package speech

import "log"

type Sink interface {
	Speak(text string) error
}

// LogSink is the default sink when no voice backend is wired up.
type LogSink struct{}

func (LogSink) Speak(text string) error {
	log.Printf("voice output: %q", text)
	return nil
}
