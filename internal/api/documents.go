package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docsync/internal/docstore"
	"docsync/internal/identity"
	"docsync/internal/models"
)

// Document endpoints. These are the explicit user actions (open, save,
// revert); the live broadcast path never touches the store, and a failed
// store call is surfaced to the caller rather than retried here.

func (h *Handlers) CreateDocument(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	var req models.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title required")
		return
	}
	doc, err := h.repo.Create(req.Title, username)
	if err != nil {
		h.log.Error("create document failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	docs, err := h.repo.ListFor(username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	doc, err := h.repo.Load(chi.URLParam(r, "id"), username)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) SaveDocument(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	docID := chi.URLParam(r, "id")
	var req models.SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := h.repo.Load(docID, username); err != nil {
		h.writeStoreError(w, err)
		return
	}
	doc, err := h.repo.Save(docID, req.Content)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	if err := h.repo.Delete(chi.URLParam(r, "id"), username); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) ListVersions(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	docID := chi.URLParam(r, "id")
	if _, err := h.repo.Load(docID, username); err != nil {
		h.writeStoreError(w, err)
		return
	}
	versions, err := h.repo.ListVersions(docID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handlers) RevertDocument(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	docID := chi.URLParam(r, "id")
	var req models.RevertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := h.repo.Load(docID, username); err != nil {
		h.writeStoreError(w, err)
		return
	}
	doc, err := h.repo.Revert(docID, req.VersionID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	var req models.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}
	if _, err := h.repo.Invite(chi.URLParam(r, "id"), username, req.Username); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.InviteResponse{Collaborator: req.Username})
}

// GetPresence reports who currently has the document open in a live
// session. An unopened document simply has nobody present.
func (h *Handlers) GetPresence(w http.ResponseWriter, r *http.Request) {
	username, _ := identity.UsernameFromContext(r.Context())
	docID := chi.URLParam(r, "id")
	if _, err := h.repo.Load(docID, username); err != nil {
		h.writeStoreError(w, err)
		return
	}
	usernames := h.router.Presence().Snapshot(docID)
	if usernames == nil {
		usernames = []string{}
	}
	writeJSON(w, http.StatusOK, models.PresenceSnapshot{Usernames: usernames})
}

func (h *Handlers) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docstore.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, docstore.ErrVersionNotFound), errors.Is(err, docstore.ErrVersionDocumentMatch):
		writeError(w, http.StatusNotFound, "version not found")
	case errors.Is(err, docstore.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, docstore.ErrAlreadyCollaborator):
		writeError(w, http.StatusBadRequest, "already a collaborator")
	default:
		h.log.Error("document store error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
