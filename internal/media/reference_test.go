package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		want    Reference
		wantErr bool
	}{
		{"startbridge-ui.png", Reference{Path: "startbridge-ui.png", Kind: Image}, false},
		{"cree_une_fiche.mp4", Reference{Path: "cree_une_fiche.mp4", Kind: Video}, false},
		{"clip.MOV", Reference{Path: "clip.MOV", Kind: Video}, false},
		{"guide.pdf", Reference{Path: "guide.pdf", Kind: PDFPage, Page: 0}, false},
		{"guide.pdf#3", Reference{Path: "guide.pdf", Kind: PDFPage, Page: 2}, false},
		{"guide.pdf#0", Reference{}, true},
		{"guide.pdf#x", Reference{}, true},
		{"shot.png#2", Reference{}, true},
		{"", Reference{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	r := DirResolver{Root: dir}

	if _, err := r.Resolve("a.png"); err != nil {
		t.Errorf("Resolve(a.png): %v", err)
	}
	if _, err := r.Resolve("missing.png"); err == nil {
		t.Error("expected error for missing asset")
	}
	if _, err := r.Resolve("../etc/passwd"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
}

func TestLibraryLoadsAndCachesStills(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, "page.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	lib := NewLibrary(DirResolver{Root: dir}, nil)
	ctx := context.Background()
	got, err := lib.Load(ctx, MustReference("page.png"), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Bounds().Dx() != 8 || got.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v", got.Bounds())
	}

	// Removing the file must not matter once the still is cached.
	os.Remove(filepath.Join(dir, "page.png"))
	if _, err := lib.Load(ctx, MustReference("page.png"), 3); err != nil {
		t.Errorf("cached Load: %v", err)
	}

	var notified []Reference
	lib.OnFailure = func(ref Reference, err error) { notified = append(notified, ref) }
	el := NewElement(MustReference("nope.png"), "")
	if el.Load(ctx, lib, 0).OK() {
		t.Fatal("missing asset should fall back")
	}
	if len(notified) != 1 {
		t.Errorf("OnFailure called %d times, want 1", len(notified))
	}
}
