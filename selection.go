package grepdex

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// Ruleset filters candidate paths during directory scans. Include and
// exclude lists are each collapsed into a single case-insensitive
// alternation; an absent include list accepts everything and an absent
// exclude list rejects nothing.
type Ruleset struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// NewRuleset compiles the include and exclude pattern lists. A pattern
// that does not compile is a configuration error and fails the whole
// ruleset.
func NewRuleset(include, exclude []string) (*Ruleset, error) {
	inc, err := combineAlternation(include)
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	exc, err := combineAlternation(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	return &Ruleset{include: inc, exclude: exc}, nil
}

// Accept reports whether path passes the include filter (when present)
// and is not caught by the exclude filter (when present). Matches are
// unanchored substring matches, so patterns like `\.go$` and `vendor/`
// behave as expected.
func (r *Ruleset) Accept(path string) bool {
	if r.include != nil && !r.include.MatchString(path) {
		return false
	}
	if r.exclude != nil && r.exclude.MatchString(path) {
		return false
	}
	return true
}

// combineAlternation joins patterns into one case-insensitive
// alternation: (?i)(p1)|(p2)|... . An empty list yields a nil regexp,
// meaning "no filter".
func combineAlternation(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("(?i)")
	for i, p := range patterns {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteByte('(')
		sb.WriteString(p)
		sb.WriteByte(')')
	}

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, err
	}
	return re, nil
}

// SelectFiles turns a project description into the final ordered file
// list: it scans every configured root, filters candidates through the
// compiled ruleset, unions the results with the explicit file list, and
// returns the set sorted lexicographically with exact duplicates
// removed. The ordering makes archive contents independent of filesystem
// iteration order.
//
// Explicit file entries bypass the include/exclude filters. Unreadable
// directories encountered mid-scan are skipped; only an invalid pattern
// is fatal.
func SelectFiles(project *Project) ([]string, error) {
	rules, err := NewRuleset(project.Include, project.Exclude)
	if err != nil {
		return nil, err
	}

	files := slices.Clone(project.Files)

	for _, root := range project.Paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// Skip unreadable entries; a missing or unreadable
				// subtree should not abort the whole scan.
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if rules.Accept(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}
