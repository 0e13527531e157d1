package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"csvtojira/models"
)

type reportEntry struct {
	Row       int      `yaml:"row"`
	Type      string   `yaml:"type"`
	Title     string   `yaml:"title"`
	Status    string   `yaml:"status"`
	Key       string   `yaml:"key,omitempty"`
	ParentKey string   `yaml:"parent_key,omitempty"`
	Warnings  []string `yaml:"warnings,omitempty"`
	Error     string   `yaml:"error,omitempty"`
}

// WriteReportFile は行ごとの結果をファイルに書き出します。
// 拡張子が.yaml/.ymlならYAML、それ以外はCSVです。
func WriteReportFile(csvProc *CSVProcessor, path string, results []models.RowResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("レポートファイル作成エラー: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries := make([]reportEntry, 0, len(results))
		for _, r := range results {
			entry := reportEntry{
				Row:       r.Row,
				Type:      r.Type,
				Title:     r.Title,
				Status:    string(r.Outcome),
				Key:       r.Key,
				ParentKey: r.ParentKey,
				Warnings:  r.Warnings,
			}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			entries = append(entries, entry)
		}
		enc := yaml.NewEncoder(file)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("YAMLエンコードエラー: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("YAMLエンコードエラー: %w", err)
		}
	default:
		if err := csvProc.WriteReportCSV(file, results); err != nil {
			return err
		}
	}

	return file.Close()
}
