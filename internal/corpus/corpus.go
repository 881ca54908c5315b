// Package corpus holds the title dataset: an ordered, read-only collection of
// (title, cleaned_title, category) records plus the list of candidate categories.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"yttitle/internal/models"
	"yttitle/internal/util"
)

// Column names of the dataset exports.
const (
	ColumnTitle        = "title"
	ColumnCleanedTitle = "cleaned_title"
	ColumnCategory     = "category_title"
	ColumnCategoryList = "category"
)

// AllCategories is the pseudo-category selecting every record.
const AllCategories = "all"

// Corpus is built once and never mutated.
type Corpus struct {
	records    []models.CorpusRecord
	categories []string
}

// New builds a corpus from already-parsed records. When categories is nil the
// candidate list is the sorted set of non-empty record categories.
func New(records []models.CorpusRecord, categories []string) *Corpus {
	recs := make([]models.CorpusRecord, len(records))
	copy(recs, records)

	var cats []string
	if categories == nil {
		cats = uniqueCategories(recs)
	} else {
		cats = make([]string, len(categories))
		copy(cats, categories)
	}
	return &Corpus{records: recs, categories: cats}
}

// Load reads the dataset at corpusPath and, if categoriesPath is non-empty,
// the category listing next to it.
func Load(corpusPath, categoriesPath string) (*Corpus, error) {
	content, err := readCleaned(corpusPath)
	if err != nil {
		return nil, err
	}
	records, err := ReadRecords(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", corpusPath, err)
	}

	var categories []string
	if categoriesPath != "" {
		content, err := readCleaned(categoriesPath)
		if err != nil {
			return nil, err
		}
		categories, err = ReadCategories(strings.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("parse categories %s: %w", categoriesPath, err)
		}
	}

	c := New(records, categories)
	log.Infof("Loaded corpus %s: %d titles, %d candidate categories", corpusPath, len(c.records), len(c.categories))
	return c, nil
}

func readCleaned(path string) (string, error) {
	isBinary, err := util.IsLikelyBinary(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	if isBinary {
		return "", fmt.Errorf("%s does not look like a CSV file", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return util.CleanText(raw, path), nil
}

// ReadRecords parses a CSV dataset with a header row. The title and
// category_title columns are required; a missing cleaned_title column leaves
// every CleanedTitle empty.
func ReadRecords(r io.Reader) ([]models.CorpusRecord, error) {
	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty corpus: missing header row")
		}
		return nil, err
	}

	cols := indexColumns(header)
	titleIdx, ok := cols[ColumnTitle]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", ColumnTitle)
	}
	categoryIdx, ok := cols[ColumnCategory]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", ColumnCategory)
	}
	cleanedIdx, hasCleaned := cols[ColumnCleanedTitle]
	if !hasCleaned {
		log.Debugf("Corpus has no %q column, keyword filtering will match nothing", ColumnCleanedTitle)
	}

	var records []models.CorpusRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := models.CorpusRecord{
			Title:    util.NormalizePunctuation(html.UnescapeString(field(row, titleIdx))),
			Category: util.NormalizePunctuation(field(row, categoryIdx)),
		}
		if hasCleaned {
			rec.CleanedTitle = util.NormalizePunctuation(field(row, cleanedIdx))
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCategories parses the category listing: a CSV with a "category" column.
func ReadCategories(r io.Reader) ([]string, error) {
	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty category listing: missing header row")
		}
		return nil, err
	}
	idx, ok := indexColumns(header)[ColumnCategoryList]
	if !ok {
		return nil, fmt.Errorf("missing required column %q", ColumnCategoryList)
	}

	categories := []string{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if name := util.NormalizePunctuation(field(row, idx)); name != "" {
			categories = append(categories, name)
		}
	}
	return categories, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func uniqueCategories(records []models.CorpusRecord) []string {
	seen := make(map[string]struct{})
	cats := []string{}
	for _, rec := range records {
		if rec.Category == "" {
			continue
		}
		if _, ok := seen[rec.Category]; ok {
			continue
		}
		seen[rec.Category] = struct{}{}
		cats = append(cats, rec.Category)
	}
	sort.Strings(cats)
	return cats
}

// Len returns the number of records.
func (c *Corpus) Len() int { return len(c.records) }

// Records returns a copy of the records in load order.
func (c *Corpus) Records() []models.CorpusRecord {
	out := make([]models.CorpusRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Categories returns a copy of the candidate category list.
func (c *Corpus) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// FilterTitles returns, in corpus order, the titles of category whose cleaned
// title contains every keyword as a whitespace-delimited token. Duplicate rows
// stay duplicated.
func (c *Corpus) FilterTitles(category string, keywords []string) []string {
	var titles []string
	for _, rec := range c.records {
		if rec.Category != category {
			continue
		}
		if containsAll(strings.Fields(rec.CleanedTitle), keywords) {
			titles = append(titles, rec.Title)
		}
	}
	return titles
}

func containsAll(tokens, keywords []string) bool {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	for _, kw := range keywords {
		if _, ok := set[kw]; !ok {
			return false
		}
	}
	return true
}

// CleanedTitles returns the non-empty cleaned titles of category, or of every
// record when category is AllCategories.
func (c *Corpus) CleanedTitles(category string) []string {
	var out []string
	for _, rec := range c.records {
		if category != AllCategories && rec.Category != category {
			continue
		}
		if rec.CleanedTitle != "" {
			out = append(out, rec.CleanedTitle)
		}
	}
	return out
}
