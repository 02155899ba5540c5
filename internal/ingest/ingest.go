// Package ingest loads OCR output files into the diary_pages table,
// inferring the entry date and page number from the transcribed text.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"diary-ocr/internal/store"
)

var (
	isoDateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

	monthDateRe = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|` +
		`Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)` +
		`\s+(\d{1,2})(?:st|nd|rd|th)?\s*,\s*(\d{4})`)

	pageMarkerRe = regexp.MustCompile(`(?i)^===\s*PAGE\s+(\d+)\s*===$`)
)

// InferEntryDate scans the first ten non-empty lines for an ISO date
// (YYYY-MM-DD) or a month-name date like "Jan 1st, 2024".
func InferEntryDate(text string) (time.Time, bool) {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			lines = append(lines, s)
		}
		if len(lines) == 10 {
			break
		}
	}

	for _, line := range lines {
		if m := isoDateRe.FindStringSubmatch(line); m != nil {
			if d, err := time.Parse("2006-01-02", m[1]); err == nil {
				return d, true
			}
		}
	}

	for _, line := range lines {
		m := monthDateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		month := m[1][:1]
		month = strings.ToUpper(month) + strings.ToLower(m[1][1:])
		day, _ := strconv.Atoi(m[2])
		s := fmt.Sprintf("%s %d, %s", month, day, m[3])
		if d, err := time.Parse("Jan 2, 2006", s); err == nil {
			return d, true
		}
		if d, err := time.Parse("January 2, 2006", s); err == nil {
			return d, true
		}
		// Odd abbreviations like "Sept": retry with the 3-letter form.
		if len(month) > 3 {
			s = fmt.Sprintf("%s %d, %s", month[:3], day, m[3])
			if d, err := time.Parse("Jan 2, 2006", s); err == nil {
				return d, true
			}
		}
	}

	return time.Time{}, false
}

// InferPageNumber finds the first "=== PAGE N ===" delimiter line.
func InferPageNumber(text string) (int, bool) {
	for _, ln := range strings.Split(text, "\n") {
		if m := pageMarkerRe.FindStringSubmatch(strings.TrimSpace(ln)); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

// Inserter is satisfied by *store.PageRepo.
type Inserter interface {
	Insert(ctx context.Context, p store.Page) error
}

// File ingests one OCR output text file. Nil entryDate / pageNumber are
// inferred from the text where possible and left null otherwise.
func File(ctx context.Context, ins Inserter, userID, diaryID, path string, entryDate *time.Time, pageNumber *int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	text := string(raw)

	if entryDate == nil {
		if d, ok := InferEntryDate(text); ok {
			entryDate = &d
		}
	}
	if pageNumber == nil {
		if n, ok := InferPageNumber(text); ok {
			pageNumber = &n
		}
	}

	p := store.Page{
		UserID:         userID,
		DiaryID:        diaryID,
		PageNumber:     pageNumber,
		SourceFileName: filepath.Base(path),
		RawText:        text,
		CleanText:      text,
		EntryDate:      entryDate,
	}
	if err := ins.Insert(ctx, p); err != nil {
		return fmt.Errorf("insert %s: %w", filepath.Base(path), err)
	}
	return nil
}
