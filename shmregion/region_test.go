package shmregion

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAnonymousRejectsNonPositiveLength(t *testing.T) {
	if _, err := Anonymous(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := Anonymous(-1); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestAnonymousIsZeroedAndWritable(t *testing.T) {
	r, err := Anonymous(4096)
	if err != nil {
		t.Fatalf("Anonymous: %v", err)
	}
	defer r.Close()

	b := r.Bytes()
	if len(b) != 4096 {
		t.Fatalf("len = %d, want 4096", len(b))
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %d, want 0", i, v)
		}
	}
	b[0] = 0xFF
	if r.Bytes()[0] != 0xFF {
		t.Fatal("write did not persist through Bytes()")
	}
}

func TestFileCreatesAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")

	r, err := File(path, 8192)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(r.Bytes()) != 8192 {
		t.Fatalf("len = %d, want 8192", len(r.Bytes()))
	}
	r.Bytes()[100] = 42
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 8192 {
		t.Fatalf("file size = %d, want 8192", info.Size())
	}
}

func TestFileRejectsNonPositiveLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	if _, err := File(path, 0); err == nil {
		t.Fatal("expected error for zero length")
	}
}
