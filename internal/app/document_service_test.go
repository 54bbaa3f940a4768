package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragineer/internal/model"
)

func newDocumentFixture(t *testing.T) (*DocumentService, *fakeDocStore, *fakeIndex, *fakePublisher, string) {
	t.Helper()
	docs := newFakeDocStore()
	idx := &fakeIndex{}
	publisher := &fakePublisher{}
	uploadsDir := t.TempDir()
	svc := NewDocumentService(docs, idx, publisher, uploadsDir, 100, 20)
	return svc, docs, idx, publisher, uploadsDir
}

func TestUploadTextDocument(t *testing.T) {
	svc, docs, idx, publisher, uploadsDir := newDocumentFixture(t)

	content := []byte("step one: isolate power. step two: drain the line.")
	doc, err := svc.Upload(context.Background(), UploadInput{
		UploaderID:   "u1",
		UploaderName: "Dana",
		Title:        "Pump SOP",
		DocType:      model.DocTypeSOP,
		Filename:     "pump.txt",
		Data:         content,
	})
	require.NoError(t, err)

	assert.Equal(t, "Pump SOP", doc.Title)
	assert.Equal(t, model.DocTypeSOP, doc.DocType)
	assert.Equal(t, "pump.txt", doc.Filename)
	assert.Equal(t, 1, doc.ChunkCount)
	assert.Equal(t, int64(len(content)), doc.FileSize)

	stored, err := os.ReadFile(filepath.Join(uploadsDir, doc.ID+".txt"))
	require.NoError(t, err)
	assert.Contains(t, string(stored), "isolate power")

	assert.Contains(t, docs.docs, doc.ID)
	assert.Equal(t, []string{doc.ID}, idx.addedDocIDs)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, model.EventDocumentUploaded, publisher.events[0].EventType)
}

func TestUploadTitleDefaultsToFilenameStem(t *testing.T) {
	svc, _, _, _, _ := newDocumentFixture(t)

	doc, err := svc.Upload(context.Background(), UploadInput{
		UploaderID: "u1",
		Filename:   "boiler-manual.txt",
		DocType:    model.DocTypeManual,
		Data:       []byte("inspect the relief valve annually"),
	})
	require.NoError(t, err)
	assert.Equal(t, "boiler-manual", doc.Title)
}

func TestUploadUnsupportedExtension(t *testing.T) {
	svc, _, idx, _, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), UploadInput{
		UploaderID: "u1",
		Filename:   "photo.png",
		Data:       []byte{0x89, 0x50},
	})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Empty(t, idx.addedDocIDs)
}

func TestUploadEmptyDocument(t *testing.T) {
	svc, _, idx, _, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), UploadInput{
		UploaderID: "u1",
		Filename:   "blank.txt",
		Data:       []byte("   \n\t  "),
	})
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Empty(t, idx.addedDocIDs)
}

func TestUploadInvalidDocType(t *testing.T) {
	svc, _, _, _, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), UploadInput{
		UploaderID: "u1",
		Filename:   "doc.txt",
		DocType:    "blueprint",
		Data:       []byte("content"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUploadCompensatesIndexOnRecordFailure(t *testing.T) {
	svc, docs, idx, publisher, uploadsDir := newDocumentFixture(t)
	docs.createErr = errors.New("db down")

	_, err := svc.Upload(context.Background(), UploadInput{
		UploaderID: "u1",
		Filename:   "doc.txt",
		DocType:    model.DocTypeSOP,
		Data:       []byte("some content"),
	})
	require.Error(t, err)

	// Indexed entries were rolled back and no file survives.
	require.Len(t, idx.addedDocIDs, 1)
	assert.Equal(t, idx.addedDocIDs, idx.removedDocIDs)
	entries, readErr := os.ReadDir(uploadsDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	assert.Empty(t, publisher.events)
}

func TestListAppliesVisibilityTable(t *testing.T) {
	svc, docs, _, _, _ := newDocumentFixture(t)
	docs.docs["d1"] = &model.Document{ID: "d1", DocType: model.DocTypeSOP}
	docs.docs["d2"] = &model.Document{ID: "d2", DocType: model.DocTypeCompliance}
	docs.docs["d3"] = &model.Document{ID: "d3", DocType: model.DocTypeManual}

	list, err := svc.List(model.RoleTechnician, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "d1", list[0].ID)

	list, err = svc.List(model.RoleViewer, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(model.RoleAdmin, "")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestListUnrestrictedRoleMayNarrow(t *testing.T) {
	svc, docs, _, _, _ := newDocumentFixture(t)
	docs.docs["d1"] = &model.Document{ID: "d1", DocType: model.DocTypeSOP}
	docs.docs["d2"] = &model.Document{ID: "d2", DocType: model.DocTypeCompliance}

	list, err := svc.List(model.RoleEngineer, model.DocTypeCompliance)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "d2", list[0].ID)

	_, err = svc.List(model.RoleEngineer, "blueprint")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListRestrictedRoleFilterIgnored(t *testing.T) {
	svc, docs, _, _, _ := newDocumentFixture(t)
	docs.docs["d1"] = &model.Document{ID: "d1", DocType: model.DocTypeSOP}
	docs.docs["d2"] = &model.Document{ID: "d2", DocType: model.DocTypeCompliance}

	// A technician asking for compliance docs still sees only sops.
	list, err := svc.List(model.RoleTechnician, model.DocTypeCompliance)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "d1", list[0].ID)
}

func TestDeleteDocument(t *testing.T) {
	svc, docs, idx, publisher, uploadsDir := newDocumentFixture(t)

	path := filepath.Join(uploadsDir, "d1.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	docs.docs["d1"] = &model.Document{ID: "d1", DocType: model.DocTypeSOP, StoragePath: path}

	require.NoError(t, svc.Delete(context.Background(), "admin-1", "d1"))

	assert.NotContains(t, docs.docs, "d1")
	assert.Equal(t, []string{"d1"}, idx.removedDocIDs)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	require.Len(t, publisher.events, 1)
	assert.Equal(t, model.EventDocumentDeleted, publisher.events[0].EventType)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	svc, _, _, _, _ := newDocumentFixture(t)
	err := svc.Delete(context.Background(), "admin-1", "ghost")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
