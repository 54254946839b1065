package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/electr1fy0/storyshelf/story"
)

// Import reads stories from path. A .json file holds an archive (an
// array of stories or a single story); anything else is one story
// whose name comes from its first heading or first non-empty line.
func Import(path string) ([]story.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		trim := strings.TrimSpace(string(data))
		if strings.HasPrefix(trim, "[") {
			var stories []story.Story
			if err := json.Unmarshal(data, &stories); err != nil {
				return nil, fmt.Errorf("import %s: %w", path, err)
			}
			return stories, nil
		}
		var s story.Story
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("import %s: %w", path, err)
		}
		return []story.Story{s}, nil
	}

	name := extractName(string(data))
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s := story.New(name, string(data))
	if info, err := os.Stat(path); err == nil {
		s.LastUpdate = info.ModTime()
	}
	return []story.Story{s}, nil
}

const maxNameWidth = 50

func extractName(content string) string {
	for line := range strings.SplitSeq(content, "\n") {
		trim := strings.TrimSpace(line)
		if trim == "" {
			continue
		}
		trim = strings.TrimSpace(strings.TrimLeft(trim, "#"))
		return ansi.Truncate(trim, maxNameWidth, "...")
	}
	return ""
}

// Export writes one markdown file per story into dir and returns the count.
func Export(lib *Library, dir string) (int, error) {
	if dir == "" {
		dir = fmt.Sprintf("storyshelf_export_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	count := 0
	for _, s := range lib.Entries {
		filename := strings.NewReplacer("/", "_", "\\", "_").Replace(s.Name)
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", filename, s.ID.String()[:8]))
		if err := os.WriteFile(path, []byte(s.Body), 0o644); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
