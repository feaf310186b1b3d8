package stt

import (
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	cases := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"":          speechpb.RecognitionConfig_LINEAR16,
		"linear16":  speechpb.RecognitionConfig_LINEAR16,
		" FLAC ":    speechpb.RecognitionConfig_FLAC,
		"WEBM_OPUS": speechpb.RecognitionConfig_WEBM_OPUS,
	}
	for in, want := range cases {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"mp4", "ENCODING_UNSPECIFIED"} {
		_, err := ParseEncoding(bad)
		assert.Error(t, err, bad)
	}
}

func TestRequestUsesConfiguredAudio(t *testing.T) {
	g := &GoogleSpeech{encoding: speechpb.RecognitionConfig_WEBM_OPUS, sampleRate: 48000, language: "id-ID"}

	req := g.request([]byte{1, 2}, "")
	assert.Equal(t, speechpb.RecognitionConfig_WEBM_OPUS, req.Config.Encoding)
	assert.Equal(t, int32(48000), req.Config.SampleRateHertz)
	assert.Equal(t, "id-ID", req.Config.LanguageCode)
	assert.Equal(t, []byte{1, 2}, req.Audio.GetContent())

	req = g.request(nil, "en-GB")
	assert.Equal(t, "en-GB", req.Config.LanguageCode)

	g = &GoogleSpeech{encoding: speechpb.RecognitionConfig_FLAC}
	req = g.request(nil, "")
	assert.Equal(t, int32(0), req.Config.SampleRateHertz)
	assert.Equal(t, "en-US", req.Config.LanguageCode)
}

func TestBestAlternative(t *testing.T) {
	text, conf := bestAlternative([]*speechpb.SpeechRecognitionResult{
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "i led a team", Confidence: 0.6}}},
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "I led a team", Confidence: 0.9}, {Transcript: "", Confidence: 1}}},
	})
	assert.Equal(t, "I led a team", text)
	assert.InDelta(t, 0.9, conf, 1e-6)

	text, conf = bestAlternative(nil)
	assert.Empty(t, text)
	assert.Zero(t, conf)
}
