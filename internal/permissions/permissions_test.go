package permissions

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanRename_OwnedByUs(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "15-03-2024.jpg")
	if err := os.WriteFile(testFile, []byte("test"), 0444); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Read-only files can still be renamed; only the directory matters.
	ok, err := CanRename(testFile)
	if err != nil {
		t.Errorf("CanRename failed: %v", err)
	}
	if !ok {
		t.Error("Should be able to rename a file in our own directory")
	}
}

func TestCanRename_Missing(t *testing.T) {
	ok, err := CanRename(filepath.Join(t.TempDir(), "missing.jpg"))
	if err != nil {
		t.Errorf("CanRename failed: %v", err)
	}
	if ok {
		t.Error("Missing file reported as renamable")
	}
}

func TestCanRename_ReadOnlyDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	testFile := filepath.Join(dir, "15-03-2024.jpg")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("Failed to chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	ok, err := CanRename(testFile)
	if err != nil {
		t.Errorf("CanRename failed: %v", err)
	}
	if ok {
		t.Error("File in read-only directory reported as renamable")
	}
}

func TestGetFileOwnership(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	uid, gid, err := GetFileOwnership(testFile)
	if err != nil {
		t.Fatalf("GetFileOwnership failed: %v", err)
	}
	if uid != os.Getuid() {
		t.Errorf("uid = %d, want %d", uid, os.Getuid())
	}
	if gid < 0 {
		t.Errorf("gid = %d, want a valid gid", gid)
	}

	change, err := NeedsOwnershipChange(testFile, uid, gid)
	if err != nil || change {
		t.Errorf("NeedsOwnershipChange(own ids) = %v, %v", change, err)
	}
	change, err = NeedsOwnershipChange(testFile, -1, -1)
	if err != nil || change {
		t.Errorf("NeedsOwnershipChange(-1, -1) = %v, %v", change, err)
	}
}

func TestMatchOwnership_SameOwner(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dst := filepath.Join(dir, "dst.jpg")
	for _, p := range []string{src, dst} {
		if err := os.WriteFile(p, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	if err := MatchOwnership(src, dst); err != nil {
		t.Errorf("MatchOwnership failed: %v", err)
	}
	if _, _, err := GetFileOwnership(filepath.Join(dir, "missing")); err == nil {
		t.Error("GetFileOwnership on a missing file should fail")
	}
}
