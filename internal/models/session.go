// Package models defines the data structures shared across the service.
package models

// Mode selects the analysis persona and the required output format.
type Mode string

const (
	ModeJudge         Mode = "judge"
	ModeCounselor     Mode = "counselor"
	ModeDinner        Mode = "dinner"
	ModeEntertainment Mode = "entertainment"
)

// Valid reports whether m is one of the four supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeJudge, ModeCounselor, ModeDinner, ModeEntertainment:
		return true
	}
	return false
}

// Session is one analyzed disagreement between two partners.
// AIResponse starts nil and is written exactly once when analysis completes.
type Session struct {
	ID                int64   `json:"id"`
	Partner1Name      string  `json:"partner1Name"`
	Partner2Name      string  `json:"partner2Name"`
	Partner1Audio     string  `json:"partner1Audio,omitempty"`
	Partner2Audio     string  `json:"partner2Audio,omitempty"`
	Mode              Mode    `json:"mode"`
	AIResponse        *string `json:"aiResponse"`
	Active            bool    `json:"active"`
	TranscriptionData *string `json:"transcriptionData,omitempty"`
	IsLiveArgument    bool    `json:"isLiveArgument"`
}
