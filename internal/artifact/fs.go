package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// FSStore writes artifacts under a review directory, conventionally
// ".doccritic" next to the document:
//
//	sections/<slug>.md
//	feedback/pass1/<slug>-review.md
//	feedback/pass2/holistic-review.md
//	feedback/iterations/<slug>/round-NN.md
//	feedback/iterations/<slug>/summary.md
//	sessions/<slug>.session
type FSStore struct {
	root string
}

// DefaultDirName is the review directory created next to the document.
const DefaultDirName = ".doccritic"

// NewFS creates a filesystem store rooted at dir.
func NewFS(dir string) *FSStore {
	return &FSStore{root: dir}
}

func (s *FSStore) PutSection(slug, content string) error {
	return s.write(filepath.Join("sections", slug+".md"), content)
}

func (s *FSStore) PutPass1(slug, content string) error {
	return s.write(filepath.Join("feedback", "pass1", slug+"-review.md"), content)
}

func (s *FSStore) PutPass2(content string) error {
	return s.write(filepath.Join("feedback", "pass2", "holistic-review.md"), content)
}

func (s *FSStore) PutRound(slug string, round int, content string) error {
	name := fmt.Sprintf("round-%02d.md", round)
	return s.write(filepath.Join("feedback", "iterations", slug, name), content)
}

func (s *FSStore) PutIterationSummary(slug, content string) error {
	return s.write(filepath.Join("feedback", "iterations", slug, "summary.md"), content)
}

func (s *FSStore) PutSession(slug, handle string) error {
	return s.write(filepath.Join("sessions", slug+".session"), handle)
}

func (s *FSStore) ResetIteration(slug string) error {
	dir := filepath.Join(s.root, "feedback", "iterations", slug)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("artifact: reset iteration %s: %w", slug, err)
	}
	return nil
}

// GetSession reads back the persisted session handle for a section. Missing
// handles return an empty string, not an error.
func (s *FSStore) GetSession(slug string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, "sessions", slug+".session"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("artifact: read session %s: %w", slug, err)
	}
	return string(data), nil
}

// GetRound reads back a persisted round artifact.
func (s *FSStore) GetRound(slug string, round int) (string, error) {
	name := fmt.Sprintf("round-%02d.md", round)
	data, err := os.ReadFile(filepath.Join(s.root, "feedback", "iterations", slug, name))
	if err != nil {
		return "", fmt.Errorf("artifact: read round %d for %s: %w", round, slug, err)
	}
	return string(data), nil
}

func (s *FSStore) write(rel, content string) error {
	path := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", rel, err)
	}
	return nil
}
