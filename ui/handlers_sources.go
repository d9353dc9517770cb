package ui

import (
	"net/http"

	"quizforge/domain/core"
	"quizforge/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartMemoryLimit bounds how much of the upload is buffered in memory
// before spilling to disk; the size cap itself is enforced downstream.
const multipartMemoryLimit = 8 << 20

func (a *App) handleSourceUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		a.writeError(w, core.NewInvalidRequestError("expected a multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, core.NewInvalidRequestError("missing file field"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	source, err := a.sources.SaveFileSource(r.Context(), userFrom(r), header.Filename, contentType, file)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

type topicRequest struct {
	Topic string `json:"topic"`
}

func (a *App) handleSourceTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	source, err := a.sources.SaveTopicSource(r.Context(), userFrom(r), req.Topic)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

func (a *App) handleSourceList(w http.ResponseWriter, r *http.Request) {
	sources, err := a.sources.ListSources(r.Context(), userFrom(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if sources == nil {
		sources = []*models.StudySource{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (a *App) handleSourceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, core.NewInvalidRequestError("malformed source id"))
		return
	}

	if err := a.sources.DeleteSource(r.Context(), userFrom(r), id); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
