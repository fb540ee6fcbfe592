package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const recognizeTimeout = 10 * time.Second

type Recognizer struct {
	LanguageCode  string
	SampleRate    int32
	SpeechContext []string
	Client        *speech.Client
}

// NewRecognizer builds a recognizer. speechContext lists phrases that bias
// recognition toward expected words.
func NewRecognizer(ctx context.Context, credentialsFile, languageCode string, sampleRate int, speechContext []string) (*Recognizer, error) {
	tag, err := language.Parse(languageCode)
	if err != nil {
		return nil, fmt.Errorf("incorrect language code: %w", err)
	}

	client, err := speech.NewClient(ctx, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("unable to create google speech client: %w", err)
	}

	r := Recognizer{
		LanguageCode:  tag.String(),
		SampleRate:    int32(sampleRate),
		SpeechContext: speechContext,
		Client:        client,
	}
	return &r, nil
}

// Transcribe recognizes a complete LINEAR16 clip. It returns "" when Google
// heard no speech or rejected the audio as undecodable.
func (r *Recognizer) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()

	config := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            r.SampleRate,
		LanguageCode:               r.LanguageCode,
		EnableAutomaticPunctuation: true,
	}
	if len(r.SpeechContext) > 0 {
		config.SpeechContexts = []*speechpb.SpeechContext{{Phrases: r.SpeechContext}}
	}

	resp, err := r.Client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		if status.Code(err) == codes.InvalidArgument {
			return "", nil
		}
		return "", fmt.Errorf("unable to recognize speech [%s]: %w", status.Code(err), err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		}
	}
	return strings.Join(parts, " "), nil
}

func (r *Recognizer) Close() error {
	return r.Client.Close()
}

func clientOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}
