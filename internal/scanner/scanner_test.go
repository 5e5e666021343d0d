package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/musium/musium/internal/shared"
	"github.com/musium/musium/internal/store"
)

func newTestScanner(t *testing.T, libraryPath string) (*Scanner, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "musium.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	sc := New(libraryPath, st, 2, shared.NewConsoleLogger(), nil)
	return sc, st
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a real flac file"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFindsOnlyFlacFilesRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "artist", "album", "01.flac"))
	writeFile(t, filepath.Join(root, "artist", "album", "cover.jpg"))
	writeFile(t, filepath.Join(root, "other", "02.FLAC"))

	sc, _ := newTestScanner(t, root)
	status := &Status{}
	found, err := sc.discover(status)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("discover found %d files, want 2: %v", len(found), found)
	}
	if status.Snapshot().FilesDiscovered != 2 {
		t.Fatalf("status FilesDiscovered = %d, want 2", status.Snapshot().FilesDiscovered)
	}
}

func TestReconcileClassifiesNewChangedAndDeleted(t *testing.T) {
	root := t.TempDir()
	unchangedPath := filepath.Join(root, "unchanged.flac")
	changedPath := filepath.Join(root, "changed.flac")
	newPath := filepath.Join(root, "new.flac")
	writeFile(t, unchangedPath)
	writeFile(t, changedPath)
	writeFile(t, newPath)

	sc, st := newTestScanner(t, root)
	ctx := context.Background()

	unchangedInfo, _ := os.Stat(unchangedPath)
	changedInfo, _ := os.Stat(changedPath)

	if err := st.UpsertFileMetadata(ctx, store.FileMetadataRow{Filename: unchangedPath, FileMTime: unchangedInfo.ModTime()}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertFileMetadata(ctx, store.FileMetadataRow{Filename: changedPath, FileMTime: changedInfo.ModTime().Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}
	removedPath := filepath.Join(root, "removed.flac")
	if err := st.UpsertFileMetadata(ctx, store.FileMetadataRow{Filename: removedPath, FileMTime: time.Now()}); err != nil {
		t.Fatal(err)
	}

	status := &Status{}
	toExtract, toDelete, err := sc.reconcile(ctx, []string{unchangedPath, changedPath, newPath}, status)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	wantExtract := map[string]bool{changedPath: true, newPath: true}
	if len(toExtract) != len(wantExtract) {
		t.Fatalf("toExtract = %v, want keys of %v", toExtract, wantExtract)
	}
	for _, f := range toExtract {
		if !wantExtract[f] {
			t.Fatalf("unexpected file in toExtract: %s", f)
		}
	}

	if len(toDelete) != 1 || toDelete[0] != removedPath {
		t.Fatalf("toDelete = %v, want [%s]", toDelete, removedPath)
	}
}

func TestReconcileIsNoOpWhenNothingChanged(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "track.flac")
	writeFile(t, path)

	sc, st := newTestScanner(t, root)
	ctx := context.Background()
	info, _ := os.Stat(path)
	if err := st.UpsertFileMetadata(ctx, store.FileMetadataRow{Filename: path, FileMTime: info.ModTime()}); err != nil {
		t.Fatal(err)
	}

	status := &Status{}
	toExtract, toDelete, err := sc.reconcile(ctx, []string{path}, status)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(toExtract) != 0 || len(toDelete) != 0 {
		t.Fatalf("expected no-op reconcile, got toExtract=%v toDelete=%v", toExtract, toDelete)
	}
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	root := t.TempDir()
	sc, _ := newTestScanner(t, root)

	first := sc.Start(context.Background())
	second := sc.Start(context.Background())
	if first.Stage != second.Stage {
		t.Fatalf("concurrent Start calls returned different stages: %v vs %v", first.Stage, second.Stage)
	}
}
