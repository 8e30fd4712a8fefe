package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// Quest pack operations (filesystem-backed)

func (r *RedisStorage) ListQuestPacks(ctx context.Context) (map[string]string, error) {
	packsDir := filepath.Join(r.dataDir, "questpacks")
	packs := make(map[string]string)

	err := filepath.WalkDir(packsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("Failed to read quest pack file", "path", path, "error", err)
			return nil
		}

		var p quest.Pack
		if err := json.Unmarshal(file, &p); err != nil {
			r.logger.Warn("Failed to unmarshal quest pack file", "path", path, "error", err)
			return nil
		}

		filename := filepath.Base(path)
		packs[p.Name] = filename
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to walk quest packs directory", "error", err)
		return nil, fmt.Errorf("failed to list quest packs: %w", err)
	}

	return packs, nil
}

func (r *RedisStorage) GetQuestPack(ctx context.Context, filename string) (*quest.Pack, error) {
	path := filepath.Join(r.dataDir, "questpacks", filename)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("quest pack not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read quest pack file: %w", err)
	}

	var p quest.Pack
	if err := json.Unmarshal(file, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quest pack: %w", err)
	}

	return &p, nil
}
