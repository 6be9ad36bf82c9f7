package detector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultModelURL is the MediaPipe hand landmarker asset.
const DefaultModelURL = "https://storage.googleapis.com/mediapipe-models/" +
	"hand_landmarker/hand_landmarker/float16/latest/hand_landmarker.task"

// EnsureModel makes sure the model asset exists at path, downloading it from
// url when missing. Calling it again once the file is present does nothing.
// The download goes to a temporary file that is renamed into place, so a
// partial download never looks like a valid model.
func EnsureModel(ctx context.Context, path, url string) error {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	log.Printf("Downloading hand landmark model to %s", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build model request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("download model: empty response")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install model: %w", err)
	}

	log.Printf("Model downloaded (%d bytes)", n)
	return nil
}
