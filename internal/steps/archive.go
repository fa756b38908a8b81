package steps

import (
	"fmt"
	"path/filepath"
	"time"

	"daily_trader/internal/models"
	"daily_trader/pkg/jsonfile"
)

const archiveLayout = "2006-01-02_15-04-05"

// Archive копирует файл с итоговыми пиками в historyDir/<время>.json.
func Archive(src, historyDir string, now time.Time) (string, error) {
	var stocks []models.Stock
	if err := jsonfile.Read(src, &stocks); err != nil {
		return "", err
	}
	dst := filepath.Join(historyDir, now.Format(archiveLayout)+".json")
	if err := jsonfile.Write(dst, stocks); err != nil {
		return "", fmt.Errorf("archive: %w", err)
	}
	return dst, nil
}
