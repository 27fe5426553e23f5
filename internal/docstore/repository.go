package docstore

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"docsync/internal/models"
)

var (
	ErrDocumentNotFound     = errors.New("document not found")
	ErrVersionNotFound      = errors.New("version not found")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrAlreadyCollaborator  = errors.New("already a collaborator")
	ErrVersionDocumentMatch = errors.New("version does not belong to document")
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository { return &Repository{DB: db} }

// Create inserts a new empty document; the creator becomes owner and
// first collaborator.
func (r *Repository) Create(title, owner string) (*models.Document, error) {
	doc := &models.Document{
		DocID:         uuid.NewString(),
		Title:         title,
		Owner:         owner,
		Collaborators: []string{owner},
	}
	if err := r.DB.Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// ListFor returns every document the user collaborates on, most recently
// updated first. Collaborator filtering happens in memory; the serialized
// list is opaque to the database.
func (r *Repository) ListFor(username string) ([]models.Document, error) {
	var docs []models.Document
	if err := r.DB.Order("updated_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, d := range docs {
		if d.Owner == username || slices.Contains(d.Collaborators, username) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Load fetches one document for username, enforcing that only the owner
// or a collaborator may read it.
func (r *Repository) Load(docID, username string) (*models.Document, error) {
	doc, err := r.get(docID)
	if err != nil {
		return nil, err
	}
	if doc.Owner != username && !slices.Contains(doc.Collaborators, username) {
		return nil, ErrNotAuthorized
	}
	return doc, nil
}

// Save overwrites the document's content and appends a version row. This
// is the explicit save action; live edits never reach here.
func (r *Repository) Save(docID, content string) (*models.Document, error) {
	doc, err := r.get(docID)
	if err != nil {
		return nil, err
	}
	doc.Content = content
	doc.UpdatedAt = time.Now()
	if err := r.DB.Save(doc).Error; err != nil {
		return nil, err
	}
	version := &models.Version{DocID: docID, Content: content}
	if err := r.DB.Create(version).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document and its versions. Owner only.
func (r *Repository) Delete(docID, username string) error {
	doc, err := r.get(docID)
	if err != nil {
		return err
	}
	if doc.Owner != username {
		return ErrNotAuthorized
	}
	if err := r.DB.Delete(&models.Document{}, "doc_id = ?", docID).Error; err != nil {
		return err
	}
	return r.DB.Delete(&models.Version{}, "doc_id = ?", docID).Error
}

// ListVersions returns the saved snapshots for a document, newest first.
func (r *Repository) ListVersions(docID string) ([]models.Version, error) {
	if _, err := r.get(docID); err != nil {
		return nil, err
	}
	var versions []models.Version
	err := r.DB.Where("doc_id = ?", docID).Order("created_at DESC, id DESC").Find(&versions).Error
	return versions, err
}

// Revert restores the content of an earlier version and returns the
// updated document. The restore itself is saved as a new version so
// history stays append-only.
func (r *Repository) Revert(docID string, versionID uint) (*models.Document, error) {
	var version models.Version
	err := r.DB.First(&version, "id = ?", versionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	if version.DocID != docID {
		return nil, ErrVersionDocumentMatch
	}
	return r.Save(docID, version.Content)
}

// Invite adds username as a collaborator. Only the owner may invite.
func (r *Repository) Invite(docID, owner, username string) (*models.Document, error) {
	doc, err := r.get(docID)
	if err != nil {
		return nil, err
	}
	if doc.Owner != owner {
		return nil, ErrNotAuthorized
	}
	if slices.Contains(doc.Collaborators, username) {
		return nil, ErrAlreadyCollaborator
	}
	doc.Collaborators = append(doc.Collaborators, username)
	if err := r.DB.Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Repository) get(docID string) (*models.Document, error) {
	var doc models.Document
	err := r.DB.First(&doc, "doc_id = ?", docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
