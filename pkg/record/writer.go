package record

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

var nameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// frameHeaderSize is width, height (uint32) and elapsed nanoseconds (int64)
const frameHeaderSize = 16

// Manifest describes a recording so readers can locate and decode its frames
type Manifest struct {
	Version    int    `json:"version"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at"`
	Codec      Codec  `json:"codec"`
	FramesPath string `json:"frames_path"`
	Frames     int    `json:"frames"`
}

// Writer streams rendered frames into a compressed recording directory
type Writer struct {
	mu       sync.Mutex
	dir      string
	manifest Manifest
	file     *os.File
	stream   io.WriteCloser
	closed   bool
}

// NewWriter creates <root>/<name>-<timestamp>/ with a manifest and an empty frame stream
func NewWriter(root, name string, codec Codec) (*Writer, error) {
	if root == "" {
		return nil, fmt.Errorf("recording root must be provided")
	}

	cleaned := nameCleaner.ReplaceAllString(name, "")
	if cleaned == "" {
		cleaned = "recording"
	}
	created := time.Now().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405.000Z")))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recording dir: %w", err)
	}

	manifest := Manifest{
		Version:    1,
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  created.Format(time.RFC3339Nano),
		Codec:      codec,
		FramesPath: codec.FramesFile(),
	}

	file, err := os.Create(filepath.Join(dir, manifest.FramesPath))
	if err != nil {
		return nil, fmt.Errorf("create frames file: %w", err)
	}
	stream, err := codec.newEncoder(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	w := &Writer{dir: dir, manifest: manifest, file: file, stream: stream}
	if err := w.writeManifest(); err != nil {
		stream.Close()
		file.Close()
		return nil, err
	}
	return w, nil
}

// Directory exposes the directory backing the recording
func (w *Writer) Directory() string {
	return w.dir
}

// Manifest returns the manifest as it will be written on Close
func (w *Writer) Manifest() Manifest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.manifest
}

// WriteFrame appends one frame: a little-endian header followed by tightly packed RGBA rows
func (w *Writer) WriteFrame(img *image.RGBA, elapsed time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("write frame: recording closed")
	}

	bounds := img.Bounds()
	var header [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(bounds.Dx()))
	binary.LittleEndian.PutUint32(header[4:8], uint32(bounds.Dy()))
	binary.LittleEndian.PutUint64(header[8:16], uint64(elapsed.Nanoseconds()))

	if _, err := w.stream.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}

	rowBytes := bounds.Dx() * 4
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		start := img.PixOffset(bounds.Min.X, y)
		if _, err := w.stream.Write(img.Pix[start : start+rowBytes]); err != nil {
			return fmt.Errorf("write frame row %d: %w", y, err)
		}
	}

	w.manifest.Frames++
	return nil
}

// Close flushes the frame stream and rewrites the manifest with the final frame count
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.stream.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush frames: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close frames file: %w", err)
	}
	return w.writeManifest()
}

func (w *Writer) writeManifest() error {
	data, err := json.MarshalIndent(w.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, "manifest.json"), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
