package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestPhotoKey(t *testing.T) {
	key, err := photoKey("sunset at the mosque!.JPG", 7)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, "journal/7/sunset_at_the_mosque_") {
		t.Errorf("unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("extension must be lowercased: %s", key)
	}
	if strings.Contains(key, " ") || strings.Contains(key, "!") {
		t.Errorf("unsafe characters must be stripped: %s", key)
	}
}

func TestPhotoKeyFallbackName(t *testing.T) {
	key, err := photoKey("日記.png", 7)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, "journal/7/photo_") {
		t.Errorf("fully-stripped names fall back to photo: %s", key)
	}
}

func TestPhotoKeyRejectsNonPhotos(t *testing.T) {
	for _, name := range []string{"notes.pdf", "clip.mp4", "archive.zip", "noext"} {
		if _, err := photoKey(name, 7); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%s: want ErrUnsupportedType, got %v", name, err)
		}
	}
}
