// Package history provides match history loaders backed by files, HTTP and memory.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/winrate/internal/domain/match"
)

// CSV column positions.
const (
	colResult = iota
	colDuration
	colKDA
)

// DecodeCSV reads a chronological (oldest first) match feed and returns it
// most recent first.
//
// Each line is "result,MM:SS,kills/deaths/assists" where result "1" is a win.
// Fields that cannot be parsed degrade to a zero duration or zero efficiency
// instead of failing the whole feed.
func DecodeCSV(r io.Reader) (match.History, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var records []match.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSource, err)
		}
		records = append(records, parseRow(row))
	}
	return match.FromChronological(records), nil
}

func parseRow(row []string) match.Record {
	won := field(row, colResult) == "1"
	minutes := parseMinutes(field(row, colDuration))
	kills, deaths, assists, ok := parseKDA(field(row, colKDA))
	if !ok {
		return match.Record{Won: won, DurationMinutes: minutes}
	}
	return match.New(won, minutes, kills, deaths, assists)
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseMinutes reads the minutes part of "MM:SS". Seconds are dropped.
func parseMinutes(v string) int {
	mm, _, ok := strings.Cut(v, ":")
	if !ok {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil || minutes < 0 {
		return 0
	}
	return minutes
}

func parseKDA(v string) (kills, deaths, assists int, ok bool) {
	parts := strings.Split(v, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}
