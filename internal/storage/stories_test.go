package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

const jsonStory = `{
  "metadata": {"id": "gate_story", "title": "The Gate"},
  "pages": [
    {"id": 1, "text": "You stand before the gate.",
     "choices": [{"text": "Enter", "nextPageId": 2}]},
    {"id": 2, "text": "Inside at last."}
  ]
}`

const yamlStory = `metadata:
  id: tower_story
  title: The Tower
presets:
  stats:
    - name: SKILL
      default: 7
pages:
  - id: start
    text: The tower looms.
    choices:
      - text: Climb
        nextPageId: top
        requiresStat:
          name: SKILL
          min: 5
  - id: top
    text: You reach the top.
    ending: soft
`

func writeStoryDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	storiesDir := filepath.Join(dir, "stories")
	require.NoError(t, os.MkdirAll(storiesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(storiesDir, "gate.json"), []byte(jsonStory), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(storiesDir, "tower.yaml"), []byte(yamlStory), 0o644))
	return dir
}

func TestListStories_JSONAndYAML(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), writeStoryDir(t), logger)
	defer func() { _ = store.Close() }()

	stories, err := store.ListStories(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"The Gate":  "gate.json",
		"The Tower": "tower.yaml",
	}, stories)
}

func TestGetStory_JSONNumericIDs(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), writeStoryDir(t), logger)
	defer func() { _ = store.Close() }()

	doc, err := store.GetStory(context.Background(), "gate.json")
	require.NoError(t, err)

	pages := doc.Pages()
	require.Len(t, pages, 2)
	require.EqualValues(t, "1", pages[0].ID, "numeric ids normalize to strings")
	require.EqualValues(t, "2", pages[0].Choices[0].NextPageID)
}

func TestGetStory_YAML(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), writeStoryDir(t), logger)
	defer func() { _ = store.Close() }()

	doc, err := store.GetStory(context.Background(), "tower.yaml")
	require.NoError(t, err)
	require.Equal(t, "tower_story", doc.Metadata.ID)

	pages := doc.Pages()
	require.Len(t, pages, 2)
	require.NotNil(t, pages[0].Choices[0].RequiresStat)
	require.Equal(t, 5, pages[0].Choices[0].RequiresStat.Min)
}

func TestGetStory_Missing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), writeStoryDir(t), logger)
	defer func() { _ = store.Close() }()

	_, err = store.GetStory(context.Background(), "no_such.json")
	require.Error(t, err)
}

func TestGetStory_RejectsPathTraversal(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	dir := writeStoryDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outside.json"), []byte(jsonStory), 0o644))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), dir, logger)
	defer func() { _ = store.Close() }()

	for _, name := range []string{
		"../outside.json",
		"sub/outside.json",
		"stories/../../outside.json",
		"",
	} {
		_, err := store.GetStory(context.Background(), name)
		require.Error(t, err, "filename %q must not resolve outside the stories dir", name)
	}
}
