package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroemu/chip8/internal/memory"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	rom := []byte{0x12, 0x00}
	assert.NoError(t, os.WriteFile(path, rom, 0o644))

	data, err := Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, rom, data)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ch8")
	assert.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyROM))
}

func TestLoadOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.ch8")
	assert.NoError(t, os.WriteFile(path, make([]byte, memory.MaxROMSize+1), 0o644))

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, memory.ErrROMTooLarge))
}

func TestLoadURL(t *testing.T) {
	rom := []byte{0x12, 0x00, 0xaa}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(rom)
	}))
	defer server.Close()

	data, err := Load(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, rom, data)
}

func TestLoadURLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Load(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestLoadURLOversized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, memory.MaxROMSize+100))
	}))
	defer server.Close()

	_, err := Load(context.Background(), server.URL)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, memory.ErrROMTooLarge))
}
