package youtube

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidURL means no video id could be resolved from the input.
// No network call is attempted in this case.
var ErrInvalidURL = errors.New("invalid YouTube URL: no video id found")

// ErrNoTranscripts means YouTube reports zero caption tracks for the video.
var ErrNoTranscripts = errors.New("no transcripts available for this video")

// AttemptError captures one failed strategy attempt.
type AttemptError struct {
	Strategy string
	Err      error
}

func (e AttemptError) Error() string {
	return e.Strategy + ": " + e.Err.Error()
}

// ExtractionError is returned when every strategy failed. It carries each
// strategy's individual failure so a human can diagnose which layer broke,
// plus the languages still discoverable at the time of failure.
type ExtractionError struct {
	VideoID   string
	Languages []string
	Attempts  []AttemptError
}

func (e *ExtractionError) Error() string {
	if len(e.Languages) == 0 {
		return "no captions available for this video"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "could not retrieve transcript (available languages: %s)", strings.Join(e.Languages, ", "))
	for _, a := range e.Attempts {
		sb.WriteString("; ")
		sb.WriteString(a.Error())
	}
	return sb.String()
}

func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}
