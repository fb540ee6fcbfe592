package config

type Config struct {
	Profiles []Profile `json:"profiles"`
}

// Profile selects how Raphael hears and sounds.
type Profile struct {
	Name          string            `json:"name"`
	LanguageCode  string            `json:"language_code"`
	VoiceName     string            `json:"voice_name"`
	SpeakingRate  float64           `json:"speaking_rate"`
	SpeechContext map[string]string `json:"speech_context"`
}
