package models

// TranscriptSegment is one timed span of a transcript. Start and End are
// seconds from the beginning of the recording; they are pointers because not
// every STT provider reports offsets.
type TranscriptSegment struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// TranscriptWord is one word-level span, when the provider returns them.
type TranscriptWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// TranscriptionResult is the outcome of transcribing one audio input.
// Immutable after creation.
type TranscriptionResult struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
	Words    []TranscriptWord    `json:"words,omitempty"`
}

// AnalysisResult is the LLM verdict with its creation time (RFC 3339).
type AnalysisResult struct {
	Verdict   string `json:"verdict"`
	Timestamp string `json:"timestamp"`
}
