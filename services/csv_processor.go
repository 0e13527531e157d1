package services

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"csvtojira/config"
	"csvtojira/models"
	"csvtojira/utils"
)

// CSVのカラム名
const (
	ColumnWorkItemType = "Work Item Type"
	ColumnTitle        = "Title"
	ColumnTags         = "Tags"
	ColumnDescription  = "Description"
	ColumnPriority     = "Priority"
	ColumnParent       = "Parent"
)

var requiredColumns = []string{ColumnWorkItemType, ColumnTitle}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVProcessor はCSVファイルの読み書きを担当します
type CSVProcessor struct {
	config *config.Config
}

// NewCSVProcessor は新しいCSVプロセッサーを作成します
func NewCSVProcessor(cfg *config.Config) *CSVProcessor {
	return &CSVProcessor{
		config: cfg,
	}
}

// WorkItemReader はCSVから作業項目をファイル順に1件ずつ読み出します
type WorkItemReader struct {
	path    string
	closer  io.Closer
	reader  *csv.Reader
	columns map[string]int
	row     int
}

// OpenWorkItems はCSVを開いてヘッダーを検証します。
// 必須カラムが無い場合はAPI呼び出し前に*models.InputErrorを返します。
func (p *CSVProcessor) OpenWorkItems(path string) (*WorkItemReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.InputError{Path: path, Err: fmt.Errorf("CSVオープンエラー: %w", err)}
	}

	r, err := newWorkItemReader(path, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

func newWorkItemReader(path string, src io.Reader) (*WorkItemReader, error) {
	buffered := bufio.NewReader(src)
	// Excel等が付けるBOMを取り除く
	if head, err := buffered.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		_, _ = buffered.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.InputError{Path: path, Err: errors.New("CSVデータが不足しています")}
	}
	if err != nil {
		return nil, &models.InputError{Path: path, Err: fmt.Errorf("ヘッダー読み込みエラー: %w", err)}
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		name := strings.ToLower(strings.TrimSpace(header))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &models.InputError{
			Path: path,
			Err:  fmt.Errorf("%w: %s", models.ErrMissingColumn, strings.Join(missing, ", ")),
		}
	}

	return &WorkItemReader{path: path, reader: reader, columns: columns}, nil
}

// Next は次の作業項目を返します。終端ではio.EOFを返します。
// 種別が空の行は読み飛ばしますが、行番号は消費します。
func (r *WorkItemReader) Next() (models.WorkItem, error) {
	for {
		record, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			return models.WorkItem{}, io.EOF
		}
		if err != nil {
			return models.WorkItem{}, &models.InputError{Path: r.path, Err: fmt.Errorf("CSV読み込みエラー: %w", err)}
		}
		r.row++

		rawType := strings.TrimSpace(r.field(record, ColumnWorkItemType))
		if rawType == "" {
			utils.LogDebug("行 %d: 作業項目タイプが空のためスキップします", r.row)
			continue
		}

		itemType, _ := models.ParseWorkItemType(rawType)
		return models.WorkItem{
			Row:         r.row,
			RawType:     rawType,
			Type:        itemType,
			Title:       strings.TrimSpace(r.field(record, ColumnTitle)),
			Description: strings.TrimSpace(r.field(record, ColumnDescription)),
			Tags:        splitTags(r.field(record, ColumnTags)),
			Priority:    strings.TrimSpace(r.field(record, ColumnPriority)),
			ParentRef:   strings.TrimSpace(r.field(record, ColumnParent)),
		}, nil
	}
}

// Close はファイルを閉じます
func (r *WorkItemReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// 存在しないカラムや短い行は空文字として扱う
func (r *WorkItemReader) field(record []string, column string) string {
	idx, ok := r.columns[strings.ToLower(column)]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// ReadWorkItems はCSVの全作業項目を読み込みます
func (p *CSVProcessor) ReadWorkItems(path string) ([]models.WorkItem, error) {
	utils.LogInfo("CSVファイル '%s' を読み込みます", path)

	reader, err := p.OpenWorkItems(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var items []models.WorkItem
	for {
		item, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	utils.LogInfo("CSVを読み込みました: %d 件", len(items))
	return items, nil
}

// splitTags はタグ列を「;」で分割し、前後の空白を除いて空要素を捨てます
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ";") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// WriteReportCSV は行番号とJIRAキーの対応をCSVに書き出します
func (p *CSVProcessor) WriteReportCSV(w io.Writer, results []models.RowResult) error {
	headers := []string{"Row", "Work Item Type", "Title", "Status", "JIRA Issue Key", "Parent Key", "Error"}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("ヘッダー書き込みエラー: %w", err)
	}

	for _, result := range results {
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		row := []string{
			fmt.Sprint(result.Row),
			result.Type,
			result.Title,
			string(result.Outcome),
			result.Key,
			result.ParentKey,
			errText,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("行書き込みエラー: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV書き込み完了エラー: %w", err)
	}
	return nil
}
