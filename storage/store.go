package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/maastricht-university/speech-coach/audio"
)

// Artifact names inside a job directory.
const (
	TranscriptFile = "transcription.json"
	ResultsFile    = "analysis_results.json"
)

// ErrMissing is returned when an upload is no longer on disk.
var ErrMissing = errors.New("storage: file not found")

// Store keeps per-job artifacts under a root directory:
//
//	<root>/uploads/<job>_<name>          original audio
//	<root>/transcriptions/<job>/...      transcript, clips, report
type Store struct {
	uploads string
	results string
}

func New(root string) (*Store, error) {
	s := &Store{
		uploads: filepath.Join(root, "uploads"),
		results: filepath.Join(root, "transcriptions"),
	}
	for _, dir := range []string{s.uploads, s.results} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SafeName strips directories from an uploaded file name.
func SafeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// UploadPath is where the original audio of a job lives.
func (s *Store) UploadPath(jobID, fileName string) string {
	return filepath.Join(s.uploads, jobID+"_"+SafeName(fileName))
}

// JobDir is the artifact directory of a job.
func (s *Store) JobDir(jobID string) string {
	return filepath.Join(s.results, jobID)
}

// SaveUpload copies r to the job's upload path.
func (s *Store) SaveUpload(jobID, fileName string, r io.Reader) (string, error) {
	path := s.UploadPath(jobID, fileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// OpenUpload returns the job's original audio or ErrMissing.
func (s *Store) OpenUpload(jobID, fileName string) (*os.File, error) {
	f, err := os.Open(s.UploadPath(jobID, fileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMissing
	}
	return f, err
}

func (s *Store) mkJobDir(jobID string) (string, error) {
	dir := s.JobDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// WriteJSON stores v as indented JSON in the job directory.
func (s *Store) WriteJSON(jobID, name string, v any) (string, error) {
	dir, err := s.mkJobDir(jobID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, writeJSON(path, v)
}

// WriteClip stores the audio of one segment as segment_<id>.wav.
func (s *Store) WriteClip(jobID string, segmentID int, clip audio.Buffer) (string, error) {
	dir, err := s.mkJobDir(jobID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("segment_%d.wav", segmentID))
	return path, audio.WriteFile(path, clip)
}

// Remove deletes the upload and artifact directory of a job. Missing
// files are not an error.
func (s *Store) Remove(jobID, fileName string) error {
	err := os.Remove(s.UploadPath(jobID, fileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return s.RemoveArtifacts(jobID)
}

// RemoveArtifacts deletes only the artifact directory of a job.
func (s *Store) RemoveArtifacts(jobID string) error {
	return os.RemoveAll(s.JobDir(jobID))
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
