package pyramid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Sink receives encoded tiles and the final manifest. WriteTile must be
// safe for concurrent calls; Finalize and Abort are called once, from
// one goroutine, after all writes have returned.
type Sink interface {
	WriteTile(c Coord, data []byte) error
	// Finalize publishes the complete tile set and manifest atomically.
	Finalize(m *Manifest) error
	// Abort discards staged output, leaving any previously finalized
	// pyramid untouched.
	Abort() error
}

// DirSink writes tiles as <zoom>/<col>/<row>.<ext> files into a staging
// directory beside the final pyramid directory, then swaps the whole
// staged set in with a rename on Finalize. A consumer resolving tiles
// under <out>/<assetID>/ therefore sees either the previous complete
// pyramid or the new one.
type DirSink struct {
	finalDir   string
	stagingDir string
	ext        string
}

// NewDirSink creates the staging directory for one pyramid build.
func NewDirSink(outDir, assetID, ext string) (*DirSink, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	staging, err := os.MkdirTemp(outDir, ".staging-"+assetID+"-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &DirSink{
		finalDir:   filepath.Join(outDir, assetID),
		stagingDir: staging,
		ext:        ext,
	}, nil
}

// TilePath returns the final location of one tile.
func (s *DirSink) TilePath(c Coord) string {
	return filepath.Join(s.finalDir, tileRelPath(c, s.ext))
}

func tileRelPath(c Coord, ext string) string {
	return filepath.Join(
		strconv.FormatUint(uint64(c.Zoom), 10),
		strconv.FormatUint(uint64(c.Col), 10),
		strconv.FormatUint(uint64(c.Row), 10)+"."+ext,
	)
}

// WriteTile implements Sink.
func (s *DirSink) WriteTile(c Coord, data []byte) error {
	path := filepath.Join(s.stagingDir, tileRelPath(c, s.ext))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create tile dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tile %d/%d/%d: %w", c.Zoom, c.Col, c.Row, err)
	}
	return nil
}

// Finalize implements Sink. The manifest lands in staging before the
// swap, so the rename is the single point where the new pyramid
// becomes visible.
func (s *DirSink) Finalize(m *Manifest) error {
	raw, err := m.marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.stagingDir, ManifestName), raw, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	old := s.finalDir + ".old-" + filepath.Base(s.stagingDir)
	hadPrevious := false
	if _, err := os.Stat(s.finalDir); err == nil {
		hadPrevious = true
		if err := os.Rename(s.finalDir, old); err != nil {
			return fmt.Errorf("retire previous pyramid: %w", err)
		}
	}
	if err := os.Rename(s.stagingDir, s.finalDir); err != nil {
		if hadPrevious {
			// Put the previous pyramid back; the staged set stays for Abort.
			_ = os.Rename(old, s.finalDir)
		}
		return fmt.Errorf("publish pyramid: %w", err)
	}
	if hadPrevious {
		_ = os.RemoveAll(old)
	}
	return nil
}

// Abort implements Sink.
func (s *DirSink) Abort() error {
	return os.RemoveAll(s.stagingDir)
}

// ManifestPath returns the location of a finalized manifest for an
// asset under an output directory.
func ManifestPath(outDir, assetID string) string {
	return filepath.Join(outDir, assetID, ManifestName)
}
