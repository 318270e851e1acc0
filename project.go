package grepdex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveExt is the extension of a published archive. The output path of
// a build is the project path with its extension replaced by ArchiveExt.
const ArchiveExt = ".gdx"

// Project is a parsed project description: the scan roots, the
// include/exclude patterns applied during scanning, and explicit file
// paths that bypass filtering.
type Project struct {
	Paths   []string
	Include []string
	Exclude []string
	Files   []string
}

// ParseProject reads the line-oriented project description format:
//
//	path <dir>        adds a scan root
//	include <regex>   adds an include pattern
//	exclude <regex>   adds an exclude pattern
//	<anything else>   adds an explicit file path
//
// A '#' starts a comment that runs to the end of the line. Leading and
// trailing whitespace is trimmed. Blank lines are ignored. A directive
// keyword must be followed by whitespace and a value; a line like
// "include" alone is an explicit file path named "include".
func ParseProject(r io.Reader) (*Project, error) {
	p := &Project{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		if suffix, ok := directiveValue(line, "path"); ok {
			p.Paths = append(p.Paths, suffix)
			continue
		}
		if suffix, ok := directiveValue(line, "include"); ok {
			p.Include = append(p.Include, suffix)
			continue
		}
		if suffix, ok := directiveValue(line, "exclude"); ok {
			p.Exclude = append(p.Exclude, suffix)
			continue
		}

		if file := trimLine(line); file != "" {
			p.Files = append(p.Files, file)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read project description: %w", err)
	}

	return p, nil
}

// LoadProject reads and parses the project description at path.
func LoadProject(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project file: %w", err)
	}
	defer f.Close()

	p, err := ParseProject(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// OutputPath derives the archive path from a project description path by
// replacing its extension with ArchiveExt.
func OutputPath(projectPath string) string {
	return strings.TrimSuffix(projectPath, filepath.Ext(projectPath)) + ArchiveExt
}

// directiveValue extracts the value of a directive line. The keyword
// must be followed by at least one whitespace byte and a non-empty
// value.
func directiveValue(line, keyword string) (string, bool) {
	if !strings.HasPrefix(line, keyword) || len(line) <= len(keyword) {
		return "", false
	}
	rest := line[len(keyword):]
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	value := trimLine(rest)
	if value == "" {
		return "", false
	}
	return value, true
}

func trimLine(s string) string {
	return strings.Trim(s, " \t\r")
}
