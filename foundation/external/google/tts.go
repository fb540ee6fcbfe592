package google

import (
	"context"
	"fmt"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"golang.org/x/text/language"
)

const synthesizeTimeout = 10 * time.Second

type TextToSpeech struct {
	Voice       *texttospeechpb.VoiceSelectionParams
	AudioConfig *texttospeechpb.AudioConfig
	Client      *texttospeech.Client
}

func NewTextToSpeech(ctx context.Context, credentialsFile, languageCode, voiceName string, speakingRate float64) (*TextToSpeech, error) {
	tag, err := language.Parse(languageCode)
	if err != nil {
		return nil, fmt.Errorf("incorrect language code: %w", err)
	}

	client, err := texttospeech.NewClient(ctx, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("unable to create google text-to-speech client: %w", err)
	}

	t := TextToSpeech{
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: tag.String(),
			Name:         voiceName,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_MALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  speakingRate,
		},
		Client: client,
	}
	return &t, nil
}

// Synthesize returns MP3 audio for text.
func (t *TextToSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, synthesizeTimeout)
	defer cancel()

	resp, err := t.Client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice:       t.Voice,
		AudioConfig: t.AudioConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to synthesize speech: %w", err)
	}
	return resp.GetAudioContent(), nil
}

func (t *TextToSpeech) Close() error {
	return t.Client.Close()
}
