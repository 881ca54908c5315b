package clix

import (
	"strings"

	"github.com/spf13/pflag"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// ParseList reads a comma-separated string flag. A flag that was never set
// yields nil so callers can fall back to the selected keyword.
func ParseList(flags *pflag.FlagSet, name string) []string {
	if !flags.Changed(name) {
		return nil
	}
	raw, _ := flags.GetString(name)
	words := SplitList(raw)
	if words == nil {
		return []string{}
	}
	return words
}

// SplitList splits s on commas, trimming space and dropping empty entries.
func SplitList(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(w); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}
