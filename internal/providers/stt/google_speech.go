package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

// SpeechConfig describes the audio the browser streams to the voice socket.
type SpeechConfig struct {
	// Encoding is a RecognitionConfig encoding name such as LINEAR16 or WEBM_OPUS.
	Encoding     string
	SampleRateHz int
	Language     string
}

type GoogleSpeech struct {
	c *speech.Client

	encoding   speechpb.RecognitionConfig_AudioEncoding
	sampleRate int32
	language   string
}

func NewGoogleSpeech(ctx context.Context, cfg SpeechConfig) (*GoogleSpeech, error) {
	enc, err := ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if cfg.SampleRateHz < 0 {
		return nil, fmt.Errorf("stt: sample rate must be positive, got %d", cfg.SampleRateHz)
	}
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("stt: new client: %w", err)
	}
	return &GoogleSpeech{
		c:          c,
		encoding:   enc,
		sampleRate: int32(cfg.SampleRateHz),
		language:   cfg.Language,
	}, nil
}

// ParseEncoding maps an encoding name onto the API enum. An empty name means LINEAR16.
func ParseEncoding(name string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return speechpb.RecognitionConfig_LINEAR16, nil
	}
	v, ok := speechpb.RecognitionConfig_AudioEncoding_value[name]
	if !ok || v == int32(speechpb.RecognitionConfig_ENCODING_UNSPECIFIED) {
		return 0, fmt.Errorf("stt: unsupported audio encoding %q", name)
	}
	return speechpb.RecognitionConfig_AudioEncoding(v), nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	resp, err := g.c.Recognize(ctx, g.request(audio, language))
	if err != nil {
		return "", 0, err
	}
	text, conf := bestAlternative(resp.Results)
	return text, conf, nil
}

func (g *GoogleSpeech) request(audio []byte, language string) *speechpb.RecognizeRequest {
	if language == "" {
		language = g.language
	}
	if language == "" {
		language = "en-US"
	}
	rc := &speechpb.RecognitionConfig{
		Encoding:                   g.encoding,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	// self-describing containers carry their own rate
	if g.sampleRate > 0 {
		rc.SampleRateHertz = g.sampleRate
	}
	return &speechpb.RecognizeRequest{
		Config: rc,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
}

// bestAlternative picks the most confident non-empty transcript across results.
func bestAlternative(results []*speechpb.SpeechRecognitionResult) (string, float64) {
	var text string
	var conf float64
	for _, r := range results {
		for _, alt := range r.Alternatives {
			if alt.Transcript != "" && float64(alt.Confidence) >= conf {
				text = alt.Transcript
				conf = float64(alt.Confidence)
			}
		}
	}
	return text, conf
}
