package service

import (
	"context"

	"github.com/rs/zerolog"

	"mediastudio/internal/lang"
	"mediastudio/internal/providers/voice"
)

// VoiceService fronts speech synthesis and voice cloning. When the caller
// does not pin a voice the language of the text picks the stock voice.
type VoiceService struct {
	client *voice.ElevenLabs
	logger zerolog.Logger
}

func NewVoiceService(client *voice.ElevenLabs, logger zerolog.Logger) *VoiceService {
	return &VoiceService{client: client, logger: logger}
}

// Speech is synthesized audio with its content type.
type Speech struct {
	Audio       []byte
	ContentType string
	VoiceID     string
	Language    string
}

// Synthesize converts text to speech.
func (s *VoiceService) Synthesize(ctx context.Context, voiceID, text string) (*Speech, error) {
	language := lang.Detect(text)
	if voiceID == "" {
		voiceID = voice.DefaultVoice(language)
	}
	audio, contentType, err := s.client.Synthesize(ctx, voiceID, text)
	if err != nil {
		return nil, err
	}
	return &Speech{Audio: audio, ContentType: contentType, VoiceID: voiceID, Language: language}, nil
}

// Voices lists the available voice catalog.
func (s *VoiceService) Voices(ctx context.Context) ([]voice.Voice, error) {
	return s.client.Voices(ctx)
}

// CreateClone submits samples for voice cloning and returns the voice id.
func (s *VoiceService) CreateClone(ctx context.Context, req voice.CloneRequest) (string, error) {
	id, err := s.client.CreateClone(ctx, req)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("voice_id", id).Str("name", req.Name).Msg("voice: clone submitted")
	return id, nil
}

// CloneState reports the readiness of a cloned voice.
func (s *VoiceService) CloneState(ctx context.Context, voiceID string) (*voice.CloneStatus, error) {
	return s.client.CloneState(ctx, voiceID)
}
