package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediastudio/internal/providers/voice"
)

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
}

func (a *App) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	var body ttsRequest
	if err := decodeBody(r, &body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Text == "" {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	speech, err := a.Voice.Synthesize(r.Context(), body.VoiceID, body.Text)
	if err != nil {
		a.error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", speech.ContentType)
	w.Header().Set("X-Voice-ID", speech.VoiceID)
	w.Header().Set("X-Language", speech.Language)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(speech.Audio)
}

func (a *App) ListVoices(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	voices, err := a.Voice.Voices(r.Context())
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"voices": voices})
}

// CreateVoiceClone accepts a multipart form with a name, an optional
// description and one or more audio sample files.
func (a *App) CreateVoiceClone(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	const maxCloneUpload = 32 << 20
	if err := r.ParseMultipartForm(maxCloneUpload); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	clone := voice.CloneRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Samples:     map[string][]byte{},
	}
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				a.json(w, http.StatusBadRequest, map[string]string{"error": "unreadable sample file"})
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				a.json(w, http.StatusBadRequest, map[string]string{"error": "unreadable sample file"})
				return
			}
			clone.Samples[header.Filename] = data
		}
	}

	id, err := a.Voice.CreateClone(r.Context(), clone)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"voiceId": id})
}

func (a *App) VoiceCloneStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireUser(w, r); !ok {
		return
	}
	status, err := a.Voice.CloneState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}
