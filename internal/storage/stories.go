package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

// Story document operations (filesystem-backed). Documents are authored as
// JSON or YAML under <dataDir>/stories.

func (r *RedisStorage) ListStories(ctx context.Context) (map[string]string, error) {
	return listStories(filepath.Join(r.dataDir, "stories"), r.logger)
}

func (r *RedisStorage) GetStory(ctx context.Context, filename string) (*storybook.Document, error) {
	// Filenames come from clients; anything that isn't a bare name could
	// escape the stories directory.
	if filename == "" || filename != filepath.Base(filename) {
		return nil, fmt.Errorf("invalid story filename %q", filename)
	}
	return readStory(filepath.Join(r.dataDir, "stories", filename))
}

func listStories(dir string, logger *slog.Logger) (map[string]string, error) {
	stories := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isStoryFile(path) {
			return nil
		}

		doc, err := readStory(path)
		if err != nil {
			if logger != nil {
				logger.Warn("Failed to read story file", "path", path, "error", err)
			}
			return nil
		}

		title := doc.Metadata.Title
		if title == "" {
			title = filepath.Base(path)
		}
		stories[title] = filepath.Base(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	return stories, nil
}

func isStoryFile(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func readStory(path string) (*storybook.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("story not found: %s", filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}

	var doc storybook.Document
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story JSON: %w", err)
		}
	}

	return &doc, nil
}
