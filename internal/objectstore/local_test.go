package objectstore

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPutStoresWebPUnderOwnerDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewLocal(dir, "http://localhost:8471/media", 10)

	url, err := store.Put(context.Background(), PutInput{
		OwnerID:     7,
		Filename:    "photo.png",
		ContentType: "image/png",
		Data:        pngBytes(t, 64, 48),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8471/media/7/"))
	assert.True(t, strings.HasSuffix(url, ".webp"))

	rel := strings.TrimPrefix(url, "http://localhost:8471/media/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 48, decoded.Bounds().Dy())
}

func TestPutDownsizesOversizedImages(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewLocal(dir, "http://m", 50)

	url, err := store.Put(context.Background(), PutInput{
		OwnerID: 1,
		Data:    pngBytes(t, 3000, 1500),
	})
	require.NoError(t, err)

	rel := strings.TrimPrefix(url, "http://m/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 2048, decoded.Bounds().Dx(), "longest edge clamped to the master bound")
	assert.InDelta(t, 1024, decoded.Bounds().Dy(), 1, "aspect ratio preserved")
}

func TestPutRejectsNonImage(t *testing.T) {
	t.Parallel()
	store := NewLocal(t.TempDir(), "http://m", 10)

	_, err := store.Put(context.Background(), PutInput{
		OwnerID: 1,
		Data:    []byte("#!/bin/sh\nrm -rf /\n"),
	})
	assert.Error(t, err)
}

func TestPutRejectsEmptyAndOversized(t *testing.T) {
	t.Parallel()
	store := NewLocal(t.TempDir(), "http://m", 1)

	_, err := store.Put(context.Background(), PutInput{OwnerID: 1})
	assert.Error(t, err)

	big := make([]byte, 2*1024*1024)
	_, err = store.Put(context.Background(), PutInput{OwnerID: 1, Data: big})
	assert.Error(t, err)
}

func TestRemoveDeletesObject(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := NewLocal(dir, "http://m", 10)

	url, err := store.Put(context.Background(), PutInput{OwnerID: 3, Data: pngBytes(t, 8, 8)})
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), url))
	require.NoError(t, store.Remove(context.Background(), url), "removing a missing object is not an error")

	rel := strings.TrimPrefix(url, "http://m/")
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveRejectsForeignURL(t *testing.T) {
	t.Parallel()
	store := NewLocal(t.TempDir(), "http://m", 10)

	assert.Error(t, store.Remove(context.Background(), "http://elsewhere/1/x.webp"))
}

func TestRemoveRejectsEscapingPath(t *testing.T) {
	t.Parallel()
	store := NewLocal(t.TempDir(), "http://m", 10)

	assert.Error(t, store.Remove(context.Background(), "http://m/../../etc/passwd"))
}
