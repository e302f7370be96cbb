// Package prompt deterministically constructs the system and user prompts
// for a verdict analysis. Same inputs always produce the same two strings;
// nothing here touches the network or the clock.
package prompt

import (
	"fmt"
	"strings"

	"verdict-service/internal/models"
)

// NoInputPlaceholder is rendered for an absent partner statement. A missing
// statement is always shown explicitly, never elided.
const NoInputPlaceholder = "(no input provided)"

// Prompts is the pair of strings sent to the text-generation endpoint.
type Prompts struct {
	System string
	User   string
}

// systemPrompts maps each mode to its persona and response-length cap.
var systemPrompts = map[models.Mode]string{
	models.ModeJudge: "You are Verdict, an impartial judge for couples' disagreements. " +
		"Weigh both sides fairly, rule decisively, and do not hedge. " +
		"Keep your entire response under 200 words.",
	models.ModeCounselor: "You are Verdict, a warm but candid couples counselor. " +
		"Do not pick a winner; help both partners understand each other and suggest one concrete next step. " +
		"Keep your entire response under 250 words.",
	models.ModeDinner: "You are Verdict, a decisive meal planner for couples who cannot agree on dinner. " +
		"Pick one option and commit to it. " +
		"Keep your entire response under 150 words.",
	models.ModeEntertainment: "You are Verdict, a decisive entertainment recommender for couples' movie and show standoffs. " +
		"Pick one option and commit to it. " +
		"Keep your entire response under 150 words.",
}

// introLines is the 4x2 table of opening lines, keyed by mode and then by
// whether the input is a live joint discussion.
var introLines = map[models.Mode]map[bool]string{
	models.ModeJudge: {
		true:  "%[1]s and %[2]s argued this out live; both voices appear in the shared transcript below. Rule on who is right.",
		false: "%[1]s and %[2]s have each recorded their side of a disagreement. Rule on who is right.",
	},
	models.ModeCounselor: {
		true:  "%[1]s and %[2]s talked through a conflict together; the shared transcript is below. Help them hear each other.",
		false: "%[1]s and %[2]s have each shared their perspective on a conflict. Help them hear each other.",
	},
	models.ModeDinner: {
		true:  "%[1]s and %[2]s debated dinner live; the shared transcript is below. Settle it.",
		false: "%[1]s and %[2]s each recorded what they want for dinner. Settle it.",
	},
	models.ModeEntertainment: {
		true:  "%[1]s and %[2]s debated what to watch live; the shared transcript is below. Settle it.",
		false: "%[1]s and %[2]s each recorded what they want to watch. Settle it.",
	},
}

// formatSections maps each mode to its required output section.
var formatSections = map[models.Mode]string{
	models.ModeJudge: "Respond using exactly this FORMAT:\n" +
		"VERDICT: your ruling in one paragraph\n" +
		"WINNER: %[1]s, %[2]s, or Both\n" +
		"KEY POINTS:\n" +
		"- the decisive considerations, one per line",
	models.ModeCounselor: "Respond using exactly this FORMAT:\n" +
		"VERDICT: a one-paragraph summary of what is really going on\n" +
		"KEY POINTS:\n" +
		"- what each partner most needs the other to hear, one per line\n" +
		"ADVICE: one concrete step to take this week",
	models.ModeDinner: "Respond using exactly this FORMAT:\n" +
		"VERDICT: the single place or meal you are choosing\n" +
		"WHY: one short paragraph justifying the pick\n" +
		"ALTERNATIVES:\n" +
		"- two backup options, one per line",
	models.ModeEntertainment: "Respond using exactly this FORMAT:\n" +
		"VERDICT: the single movie or show you are choosing\n" +
		"WHY: one short paragraph justifying the pick\n" +
		"ALTERNATIVES:\n" +
		"- two backup options, one per line",
}

// Build constructs the prompt pair for one analysis. partner2Text may be
// empty; it renders as an explicit placeholder. Unknown modes are rejected.
func Build(mode models.Mode, partner1Name, partner2Name, partner1Text, partner2Text string, isLiveArgument bool) (Prompts, error) {
	if !mode.Valid() {
		return Prompts{}, fmt.Errorf("unknown mode %q", mode)
	}

	statement1 := strings.TrimSpace(partner1Text)
	if statement1 == "" {
		statement1 = NoInputPlaceholder
	}
	statement2 := strings.TrimSpace(partner2Text)
	if statement2 == "" {
		statement2 = NoInputPlaceholder
	}

	// The tables reference names as %[1]s/%[2]s but not every section uses
	// both, so they are substituted rather than fed through fmt.
	names := strings.NewReplacer("%[1]s", partner1Name, "%[2]s", partner2Name)

	var b strings.Builder
	b.WriteString(names.Replace(introLines[mode][isLiveArgument]))
	b.WriteString("\n\n")
	if isLiveArgument {
		fmt.Fprintf(&b, "- Shared recording of %s and %s: %s\n", partner1Name, partner2Name, statement1)
		fmt.Fprintf(&b, "- %s separately added: %s\n", partner2Name, statement2)
	} else {
		fmt.Fprintf(&b, "- %s said: %s\n", partner1Name, statement1)
		fmt.Fprintf(&b, "- %s said: %s\n", partner2Name, statement2)
	}
	b.WriteString("\n")
	b.WriteString(names.Replace(formatSections[mode]))

	return Prompts{
		System: systemPrompts[mode],
		User:   b.String(),
	}, nil
}
