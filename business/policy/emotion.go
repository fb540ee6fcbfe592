package policy

import "strings"

// Emotion is one of the six labels the language model is asked to choose from.
type Emotion string

const (
	Happy     Emotion = "happy"
	Sad       Emotion = "sad"
	Angry     Emotion = "angry"
	Surprised Emotion = "surprised"
	Fearful   Emotion = "fearful"
	Neutral   Emotion = "neutral"
)

// Emotions lists the accepted labels in prompt order.
var Emotions = []Emotion{Happy, Sad, Angry, Surprised, Fearful, Neutral}

// Valid reports whether e is one of the six accepted labels.
func (e Emotion) Valid() bool {
	for _, v := range Emotions {
		if e == v {
			return true
		}
	}
	return false
}

// Normalize lower-cases and trims s, coercing anything unrecognized to Neutral.
func Normalize(s string) Emotion {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return Neutral
	}
	return e
}
