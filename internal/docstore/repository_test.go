package docstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsync/internal/models"
)

// setupTestRepo opens an isolated in-memory SQLite database.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err, "open test database")
	return NewRepository(db)
}

func TestCreateAndLoad(t *testing.T) {
	repo := setupTestRepo(t)

	doc, err := repo.Create("Design notes", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.DocID)
	assert.Equal(t, "alice", doc.Owner)
	assert.Equal(t, []string{"alice"}, doc.Collaborators)
	assert.Empty(t, doc.Content)

	loaded, err := repo.Load(doc.DocID, "alice")
	require.NoError(t, err)
	assert.Equal(t, doc.DocID, loaded.DocID)
	assert.Equal(t, "Design notes", loaded.Title)
}

func TestLoadAccessControl(t *testing.T) {
	repo := setupTestRepo(t)
	doc, err := repo.Create("secret", "alice")
	require.NoError(t, err)

	_, err = repo.Load(doc.DocID, "mallory")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = repo.Load("no-such-doc", "alice")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSaveAppendsVersion(t *testing.T) {
	repo := setupTestRepo(t)
	doc, err := repo.Create("doc", "alice")
	require.NoError(t, err)

	_, err = repo.Save(doc.DocID, "first draft")
	require.NoError(t, err)
	saved, err := repo.Save(doc.DocID, "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", saved.Content)

	versions, err := repo.ListVersions(doc.DocID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "second draft", versions[0].Content, "newest first")
	assert.Equal(t, "first draft", versions[1].Content)
}

func TestRevertRestoresContent(t *testing.T) {
	repo := setupTestRepo(t)
	doc, err := repo.Create("doc", "alice")
	require.NoError(t, err)

	_, err = repo.Save(doc.DocID, "keep me")
	require.NoError(t, err)
	_, err = repo.Save(doc.DocID, "overwritten")
	require.NoError(t, err)

	versions, err := repo.ListVersions(doc.DocID)
	require.NoError(t, err)
	target := versions[len(versions)-1]

	reverted, err := repo.Revert(doc.DocID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", reverted.Content)

	// The revert itself is recorded as a new version.
	versions, err = repo.ListVersions(doc.DocID)
	require.NoError(t, err)
	assert.Len(t, versions, 3)
}

func TestRevertRejectsForeignVersion(t *testing.T) {
	repo := setupTestRepo(t)
	docA, err := repo.Create("a", "alice")
	require.NoError(t, err)
	docB, err := repo.Create("b", "alice")
	require.NoError(t, err)

	_, err = repo.Save(docA.DocID, "content")
	require.NoError(t, err)
	versions, err := repo.ListVersions(docA.DocID)
	require.NoError(t, err)

	_, err = repo.Revert(docB.DocID, versions[0].ID)
	assert.ErrorIs(t, err, ErrVersionDocumentMatch)

	_, err = repo.Revert(docA.DocID, 9999)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestListForFiltersByCollaborator(t *testing.T) {
	repo := setupTestRepo(t)
	mine, err := repo.Create("mine", "alice")
	require.NoError(t, err)
	_, err = repo.Create("theirs", "bob")
	require.NoError(t, err)
	shared, err := repo.Create("shared", "bob")
	require.NoError(t, err)
	_, err = repo.Invite(shared.DocID, "bob", "alice")
	require.NoError(t, err)

	docs, err := repo.ListFor("alice")
	require.NoError(t, err)
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.DocID)
	}
	assert.ElementsMatch(t, []string{mine.DocID, shared.DocID}, ids)
}

func TestInviteRules(t *testing.T) {
	repo := setupTestRepo(t)
	doc, err := repo.Create("doc", "alice")
	require.NoError(t, err)

	_, err = repo.Invite(doc.DocID, "bob", "carol")
	assert.ErrorIs(t, err, ErrNotAuthorized, "only the owner can invite")

	updated, err := repo.Invite(doc.DocID, "alice", "carol")
	require.NoError(t, err)
	assert.Contains(t, updated.Collaborators, "carol")

	_, err = repo.Invite(doc.DocID, "alice", "carol")
	assert.ErrorIs(t, err, ErrAlreadyCollaborator)
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)
	doc, err := repo.Create("doc", "alice")
	require.NoError(t, err)
	_, err = repo.Save(doc.DocID, "content")
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(doc.DocID, "bob"), ErrNotAuthorized)
	require.NoError(t, repo.Delete(doc.DocID, "alice"))

	_, err = repo.Load(doc.DocID, "alice")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	// Versions go with the document.
	var count int64
	require.NoError(t, repo.DB.Model(&models.Version{}).Where("doc_id = ?", doc.DocID).Count(&count).Error)
	assert.Zero(t, count)
}
