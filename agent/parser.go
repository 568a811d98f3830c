package agent

import (
	"regexp"
	"strings"
)

// Kind tags the variant held by a Decision.
type Kind int

const (
	KindUnparsable Kind = iota
	KindAction
	KindFinish
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindFinish:
		return "finish"
	default:
		return "unparsable"
	}
}

// Decision is what the model asked for in one reply.
type Decision struct {
	Kind    Kind
	Thought string // reasoning preceding the action or answer
	Tool    string // KindAction
	Input   string // KindAction
	Answer  string // KindFinish
	Reason  string // KindUnparsable: corrective note fed back to the model
	Log     string // the raw reply
}

// Parser turns a raw model reply into a Decision.
type Parser interface {
	Parse(text string) Decision
}

const (
	finalAnswerMarker = "Final Answer:"
	observationMarker = "\nObservation:"

	msgMissingAction      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	msgMissingActionInput = "Invalid Format: Missing 'Action Input:' after 'Action:'"

	// Fed back for replies that carry no usable correction.
	msgInvalidResponse = "Invalid or incomplete response"
)

var (
	actionPattern      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionNamePattern  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputPattern = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	thoughtEndPattern  = regexp.MustCompile(`Action\s*\d*\s*:|` + regexp.QuoteMeta(finalAnswerMarker))
)

// ReActParser reads the Thought / Action / Action Input / Final Answer text
// format.
type ReActParser struct{}

// Parse implements Parser.
func (ReActParser) Parse(text string) Decision {
	d := Decision{Log: text, Thought: thoughtOf(text)}

	hasFinal := strings.Contains(text, finalAnswerMarker)
	match := actionPattern.FindStringSubmatch(text)

	switch {
	case match != nil && hasFinal:
		d.Kind = KindUnparsable
		d.Reason = msgInvalidResponse
	case match != nil:
		d.Kind = KindAction
		d.Tool = strings.TrimSpace(match[1])
		input, _, _ := strings.Cut(match[2], observationMarker)
		d.Input = strings.Trim(input, " ")
	case hasFinal:
		d.Kind = KindFinish
		d.Answer = strings.TrimSpace(text[strings.LastIndex(text, finalAnswerMarker)+len(finalAnswerMarker):])
	case !actionNamePattern.MatchString(text):
		d.Kind = KindUnparsable
		d.Reason = msgMissingAction
	case !actionInputPattern.MatchString(text):
		d.Kind = KindUnparsable
		d.Reason = msgMissingActionInput
	default:
		d.Kind = KindUnparsable
		d.Reason = msgInvalidResponse
	}
	return d
}

func thoughtOf(text string) string {
	if loc := thoughtEndPattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimPrefix(text, "Thought:"))
}
