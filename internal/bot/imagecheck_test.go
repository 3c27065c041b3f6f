package bot

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/kobuta23/telegram-minter/internal/errs"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestValidateImage_OK(t *testing.T) {
	if err := validateImage(encodeJPEG(t, 500, 500), "photos/file_1.jpg"); err != nil {
		t.Fatalf("500x500 jpeg: %v", err)
	}
	if err := validateImage(encodePNG(t, 400, 3000), "a.png"); err != nil {
		t.Fatalf("boundary 400x3000 png: %v", err)
	}
}

func TestValidateImage_Dimensions(t *testing.T) {
	for _, tc := range []struct{ w, h int }{
		{399, 500},
		{500, 399},
		{3001, 500},
		{500, 3001},
	} {
		err := validateImage(encodePNG(t, tc.w, tc.h), "a.png")
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("%dx%d: want ErrValidation, got %v", tc.w, tc.h, err)
		}
	}
}

func TestValidateImage_Extension(t *testing.T) {
	data := encodePNG(t, 500, 500)
	err := validateImage(data, "a.bmp")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bmp: want ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "bmp") {
		t.Fatalf("reason must name the extension: %v", err)
	}
}

func TestValidateImage_TooLarge(t *testing.T) {
	err := validateImage(make([]byte, maxImageSize+1), "a.jpg")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("oversized: want ErrValidation, got %v", err)
	}
}

func TestValidateImage_Undecodable(t *testing.T) {
	err := validateImage([]byte("not an image"), "a.jpg")
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("garbage: want ErrValidation, got %v", err)
	}
}

func TestContentTypeForExt(t *testing.T) {
	for in, want := range map[string]string{
		"a.png":  "image/png",
		"a.webp": "image/webp",
		"a.gif":  "image/gif",
		"a.jpg":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a":      "image/jpeg",
	} {
		if got := contentTypeForExt(in); got != want {
			t.Fatalf("%s: want %s, got %s", in, want, got)
		}
	}
}
