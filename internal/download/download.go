package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"visor/internal/sanitize"
	"visor/internal/sharedhttp"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

var extensions = []string{".jpg", ".png", ".gif", ".webp"}

// Downloader fetches cover images, at most perSecond requests per second.
type Downloader struct {
	client  *http.Client
	limiter *rate.Limiter
}

// New returns a Downloader on client. A perSecond of zero or less disables
// the limit.
func New(client *http.Client, perSecond float64) *Downloader {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Downloader{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Cover downloads a cover image into dir as name plus the extension matching
// its content type, and returns the resulting path. A cover that was already
// downloaded under any known extension is not fetched again.
func (d *Downloader) Cover(ctx context.Context, imageURL, dir, name string) (string, error) {
	filenameNoExt := filepath.Join(dir, sanitize.Filename(name))

	if existing, ok := existingFile(filenameNoExt); ok {
		return existing, nil
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	var filename string

	retryErr := retry.Do(func() error {
		if err := d.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("User-Agent", "visor")

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to get cover: %w", err)
		}
		defer resp.Body.Close()

		if err := sharedhttp.CheckStatusCode(resp.StatusCode); err != nil {
			return err
		}

		filename, err = appendImageExtension(resp, filenameNoExt)
		if err != nil {
			return retry.Unrecoverable(err)
		}

		return writeAtomically(resp.Body, filename)
	},
		retry.Context(ctx),
		retry.Delay(time.Second*3),
		retry.Attempts(3),
		retry.MaxJitter(time.Second*1),
		retry.LastErrorOnly(true),
	)
	if retryErr != nil {
		return "", retryErr
	}

	return filename, nil
}

// writeAtomically copies r into a temp file next to filename and renames it
// into place, so an interrupted body never leaves a file behind.
func writeAtomically(r io.Reader, filename string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".cover-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	writeBuf := bufio.NewWriter(tmp)
	if _, err = io.Copy(writeBuf, bufio.NewReader(r)); err != nil {
		return err
	}
	if err = writeBuf.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filename)
}

func existingFile(filenameNoExt string) (string, bool) {
	for _, ext := range extensions {
		if _, err := os.Stat(filenameNoExt + ext); err == nil {
			return filenameNoExt + ext, true
		}
	}

	return "", false
}

func appendImageExtension(resp *http.Response, filename string) (string, error) {
	contentType := resp.Header.Get("Content-Type")

	switch contentType {
	case "image/jpeg", "image/jpg":
		return filename + ".jpg", nil
	case "image/png":
		return filename + ".png", nil
	case "image/gif":
		return filename + ".gif", nil
	case "image/webp":
		return filename + ".webp", nil
	default:
		return filename, fmt.Errorf("unsupported content type: %s", contentType)
	}
}
