package record

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"
)

// maxFramePixels bounds the allocation a corrupt header can request
const maxFramePixels = 16384 * 16384

// Frame is one decoded frame of a recording
type Frame struct {
	Image   *image.RGBA
	Elapsed time.Duration
}

// Reader iterates the frames of a recording directory
type Reader struct {
	manifest Manifest
	file     *os.File
	stream   io.ReadCloser
}

// Open reads the manifest in dir and prepares the frame stream for decoding
func Open(dir string) (*Reader, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	file, err := os.Open(filepath.Join(dir, manifest.FramesPath))
	if err != nil {
		return nil, fmt.Errorf("open frames: %w", err)
	}
	stream, err := manifest.Codec.newDecoder(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Reader{manifest: manifest, file: file, stream: stream}, nil
}

// Manifest returns the recording's manifest
func (r *Reader) Manifest() Manifest {
	return r.manifest
}

// Next decodes the next frame. It returns io.EOF after the last frame.
func (r *Reader) Next() (Frame, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r.stream, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}

	width := int(binary.LittleEndian.Uint32(header[0:4]))
	height := int(binary.LittleEndian.Uint32(header[4:8]))
	elapsed := time.Duration(binary.LittleEndian.Uint64(header[8:16]))

	if width <= 0 || height <= 0 || width*height > maxFramePixels {
		return Frame{}, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if _, err := io.ReadFull(r.stream, img.Pix); err != nil {
		return Frame{}, fmt.Errorf("read frame pixels: %w", err)
	}

	return Frame{Image: img, Elapsed: elapsed}, nil
}

// ReadAll decodes every remaining frame
func (r *Reader) ReadAll() ([]Frame, error) {
	var frames []Frame
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// Close releases the frame stream and file
func (r *Reader) Close() error {
	r.stream.Close()
	return r.file.Close()
}
