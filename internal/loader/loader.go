// Package loader loads CHIP-8 ROM data from local files or URLs.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/retroemu/chip8/internal/memory"
)

// ErrEmptyROM is returned when the source contains no data.
var ErrEmptyROM = errors.New("ROM is empty")

const downloadTimeout = 30 * time.Second

// Load reads ROM data from a local file path or an http(s) URL and
// validates that it fits the program area.
func Load(ctx context.Context, source string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = download(ctx, source)
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("reading ROM file: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyROM, source)
	}
	if len(data) > memory.MaxROMSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", memory.ErrROMTooLarge, len(data), memory.MaxROMSize)
	}
	return data, nil
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading ROM: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading ROM: unexpected status %s", resp.Status)
	}

	// read one byte past the limit so oversized ROMs are detected
	data, err := io.ReadAll(io.LimitReader(resp.Body, memory.MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}
