package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

var api = sonic.Config{
	EscapeHTML:       false,
	SortMapKeys:      true,
	CompactMarshaler: false,
}.Froze()

// Read читает JSON файл шага в v.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := api.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Write пишет v с отступами через временный файл и rename.
func Write(path string, v any) error {
	data, err := api.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
