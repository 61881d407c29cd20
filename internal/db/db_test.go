package db

import (
	"testing"

	"github.com/prasmono/adb-to-local-copier/pkg/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveFileRecordsBatchDefaultsToPending(t *testing.T) {
	db := newTestDB(t)

	records := []models.FileRecord{
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/a.jpg", LocalPath: "/backup/sdcard/DCIM/a.jpg"},
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/b.jpg", LocalPath: "/backup/sdcard/DCIM/b.jpg"},
	}
	if err := db.SaveFileRecordsBatch(records); err != nil {
		t.Fatalf("SaveFileRecordsBatch() error: %v", err)
	}

	status, _, err := db.FileStatus("/sdcard/DCIM/a.jpg")
	if err != nil {
		t.Fatalf("FileStatus() error: %v", err)
	}
	if status != models.StatusPending {
		t.Errorf("status = %q; want %q", status, models.StatusPending)
	}
}

func TestUpdateFileStatus(t *testing.T) {
	db := newTestDB(t)

	records := []models.FileRecord{
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/a.jpg", LocalPath: "/backup/sdcard/DCIM/a.jpg"},
	}
	if err := db.SaveFileRecordsBatch(records); err != nil {
		t.Fatalf("SaveFileRecordsBatch() error: %v", err)
	}

	if err := db.UpdateFileStatus("/sdcard/DCIM/a.jpg", models.StatusSkipped, "block list: cache", 0); err != nil {
		t.Fatalf("UpdateFileStatus() error: %v", err)
	}

	status, detail, err := db.FileStatus("/sdcard/DCIM/a.jpg")
	if err != nil {
		t.Fatalf("FileStatus() error: %v", err)
	}
	if status != models.StatusSkipped {
		t.Errorf("status = %q; want %q", status, models.StatusSkipped)
	}
	if detail != "block list: cache" {
		t.Errorf("detail = %q; want %q", detail, "block list: cache")
	}
}

func TestSummaryCountsPerRoot(t *testing.T) {
	db := newTestDB(t)

	records := []models.FileRecord{
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/a.jpg", LocalPath: "/backup/sdcard/DCIM/a.jpg"},
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/b.jpg", LocalPath: "/backup/sdcard/DCIM/b.jpg"},
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/c.jpg", LocalPath: "/backup/sdcard/DCIM/c.jpg"},
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/d.jpg", LocalPath: "/backup/sdcard/DCIM/d.jpg"},
		{Root: "/sdcard/Download", RemotePath: "/sdcard/Download/e.pdf", LocalPath: "/backup/sdcard/Download/e.pdf"},
	}
	if err := db.SaveFileRecordsBatch(records); err != nil {
		t.Fatalf("SaveFileRecordsBatch() error: %v", err)
	}

	updates := []struct {
		remotePath string
		status     string
		detail     string
		bytes      int64
	}{
		{"/sdcard/DCIM/a.jpg", models.StatusCopied, "", 1024},
		{"/sdcard/DCIM/b.jpg", models.StatusOverwritten, "", 2048},
		{"/sdcard/DCIM/c.jpg", models.StatusSkipped, "local copy is current", 0},
		{"/sdcard/DCIM/d.jpg", models.StatusFailed, "adb: error: device offline", 0},
		{"/sdcard/Download/e.pdf", models.StatusCopied, "", 512},
	}
	for _, u := range updates {
		if err := db.UpdateFileStatus(u.remotePath, u.status, u.detail, u.bytes); err != nil {
			t.Fatalf("UpdateFileStatus(%s) error: %v", u.remotePath, err)
		}
	}

	summary, err := db.Summary("/sdcard/DCIM")
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if summary.Successes != 2 {
		t.Errorf("Successes = %d; want 2", summary.Successes)
	}
	if summary.Errors != 1 {
		t.Errorf("Errors = %d; want 1", summary.Errors)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d; want 1", summary.Skipped)
	}
	if summary.Overwritten != 1 {
		t.Errorf("Overwritten = %d; want 1", summary.Overwritten)
	}
	if summary.BytesPulled != 3072 {
		t.Errorf("BytesPulled = %d; want 3072", summary.BytesPulled)
	}

	other, err := db.Summary("/sdcard/Download")
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if other.Successes != 1 || other.Errors != 0 || other.Skipped != 0 {
		t.Errorf("unexpected counters for second root: %+v", other)
	}
}

func TestSummaryEmptyRoot(t *testing.T) {
	db := newTestDB(t)

	summary, err := db.Summary("/sdcard/Nothing")
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if summary.Successes != 0 || summary.Errors != 0 || summary.Skipped != 0 || summary.Overwritten != 0 || summary.BytesPulled != 0 {
		t.Errorf("expected zero counters, got %+v", summary)
	}
}

func TestSkippedPathsKeepEnumerationOrder(t *testing.T) {
	db := newTestDB(t)

	records := []models.FileRecord{
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/z.jpg", LocalPath: "/backup/sdcard/DCIM/z.jpg"},
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/m.jpg", LocalPath: "/backup/sdcard/DCIM/m.jpg"},
		{Root: "/sdcard/DCIM", RemotePath: "/sdcard/DCIM/a.jpg", LocalPath: "/backup/sdcard/DCIM/a.jpg"},
	}
	if err := db.SaveFileRecordsBatch(records); err != nil {
		t.Fatalf("SaveFileRecordsBatch() error: %v", err)
	}

	for _, path := range []string{"/sdcard/DCIM/z.jpg", "/sdcard/DCIM/a.jpg"} {
		if err := db.UpdateFileStatus(path, models.StatusSkipped, "", 0); err != nil {
			t.Fatalf("UpdateFileStatus(%s) error: %v", path, err)
		}
	}

	paths, err := db.SkippedPaths("/sdcard/DCIM")
	if err != nil {
		t.Fatalf("SkippedPaths() error: %v", err)
	}
	want := []string{"/sdcard/DCIM/z.jpg", "/sdcard/DCIM/a.jpg"}
	if len(paths) != len(want) {
		t.Fatalf("SkippedPaths() = %v; want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("SkippedPaths()[%d] = %q; want %q", i, paths[i], want[i])
		}
	}
}
