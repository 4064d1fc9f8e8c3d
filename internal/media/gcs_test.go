package media

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/posts/images/", "../My Farm (1).png")
	if !strings.HasPrefix(key, "posts/images/") {
		t.Fatalf("unexpected folder in %q", key)
	}
	if !strings.HasSuffix(key, "-My-Farm-1-.png") && !strings.HasSuffix(key, "-My-Farm-1.png") {
		t.Errorf("unexpected name in %q", key)
	}
	if strings.Contains(key, "..") {
		t.Errorf("key escapes its folder: %q", key)
	}

	if a, b := ObjectKey("x", "a.png"), ObjectKey("x", "a.png"); a == b {
		t.Error("keys must be unique per upload")
	}
	if key := ObjectKey("x", "   "); !strings.HasSuffix(key, "-file") {
		t.Errorf("blank name should fall back, got %q", key)
	}
}

func TestPublicURL(t *testing.T) {
	got := PublicURL("http://localhost:4443/", "media", "posts/images/a.png")
	if got != "http://localhost:4443/media/posts/images/a.png" {
		t.Errorf("got %s", got)
	}
}

func TestPublicBase(t *testing.T) {
	base, err := publicBase(Config{Bucket: "b"})
	if err != nil || base != defaultPublicBaseURL {
		t.Fatalf("default base: %q %v", base, err)
	}

	base, err = publicBase(Config{Bucket: "b", Endpoint: "http://localhost:4443/"})
	if err != nil || base != "http://localhost:4443" {
		t.Fatalf("emulator base: %q %v", base, err)
	}

	if _, err := publicBase(Config{Bucket: "b", PublicBaseURL: "not a url"}); err == nil {
		t.Fatal("expected an error for a relative base")
	}
}
