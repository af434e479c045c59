// Package speech turns matched gesture messages into spoken audio.
package speech

import "context"

// Speaker voices a piece of text. Implementations must be safe for
// concurrent use.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Close() error
}

// nopSpeaker discards everything. Used when no speech backend is configured.
type nopSpeaker struct{}

// NewNop returns a Speaker that silently drops all requests.
func NewNop() Speaker {
	return nopSpeaker{}
}

func (nopSpeaker) Speak(ctx context.Context, text string) error { return nil }
func (nopSpeaker) Close() error                                 { return nil }
