package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTranscript is returned when transcript JSON cannot be decoded
var ErrMalformedTranscript = errors.New("malformed transcript")

// Segment is one timed span of transcript text. SpeakerID is nil when the
// diarizer did not attribute the span.
type Segment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
	SpeakerID *string `json:"speaker_id,omitempty"`
}

// TranscriptPayload is the immutable content of one transcript file
type TranscriptPayload struct {
	Segments     []Segment
	SpeakerNames map[string]string
}

type rawSegment struct {
	Start     json.Number     `json:"start"`
	End       json.Number     `json:"end"`
	Text      string          `json:"text"`
	SpeakerID json.RawMessage `json:"speaker_id"`
	Speaker   json.RawMessage `json:"speaker"`
}

type rawTranscript struct {
	Segments     []rawSegment      `json:"segments"`
	SpeakerNames map[string]string `json:"speaker_names"`
	Metadata     struct {
		SpeakerNames map[string]string `json:"speaker_names"`
	} `json:"metadata"`
}

// ParseTranscript decodes a transcript file. Both the object form
// {"segments": [...], "metadata": {"speaker_names": {...}}} and a bare array
// of segments are accepted. Speaker ids may be strings, numbers or null.
func ParseTranscript(data []byte) (*TranscriptPayload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedTranscript)
	}

	var raw rawTranscript
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw.Segments); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTranscript, err)
		}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTranscript, err)
	}

	payload := &TranscriptPayload{
		Segments:     make([]Segment, 0, len(raw.Segments)),
		SpeakerNames: map[string]string{},
	}
	for k, v := range raw.SpeakerNames {
		payload.SpeakerNames[k] = v
	}
	for k, v := range raw.Metadata.SpeakerNames {
		payload.SpeakerNames[k] = v
	}

	for i, rs := range raw.Segments {
		start, err := numberOrZero(rs.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d start: %v", ErrMalformedTranscript, i, err)
		}
		end, err := numberOrZero(rs.End)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d end: %v", ErrMalformedTranscript, i, err)
		}
		speakerRaw := rs.SpeakerID
		if len(speakerRaw) == 0 {
			speakerRaw = rs.Speaker
		}
		payload.Segments = append(payload.Segments, Segment{
			Start:     start,
			End:       end,
			Text:      rs.Text,
			SpeakerID: speakerFromRaw(speakerRaw),
		})
	}
	return payload, nil
}

func numberOrZero(n json.Number) (float64, error) {
	if n == "" {
		return 0, nil
	}
	return n.Float64()
}

// speakerFromRaw coerces a JSON speaker id to string form; null and absent
// become nil
func speakerFromRaw(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
	} else {
		s = strings.Trim(string(raw), `"`)
	}
	return &s
}
