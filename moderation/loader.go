package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"marketsync/errors"
)

//go:embed terms/*
var termsFolder embed.FS

// TermLists maps an ISO 639-1 language code to its contact-sharing terms.
type TermLists map[string][]string

func (t TermLists) Languages() []string {
	languages := make([]string, 0, len(t))
	for lang := range t {
		languages = append(languages, lang)
	}
	return languages
}

// LoadTerms reads the embedded term lists, one file per language ("pt.txt" -> "pt").
func LoadTerms() (TermLists, error) {
	return loadTerms(termsFolder, "terms")
}

func loadTerms(fsys fs.FS, path string) (TermLists, error) {
	entries, err := fs.ReadDir(fsys, path)
	if err != nil {
		return nil, err
	}

	lists := make(TermLists)
	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			return nil, errors.ErrOnlyTermFiles
		}
		lang := strings.TrimSuffix(entry.Name(), ".txt")

		data, err := fs.ReadFile(fsys, path+"/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// Scanner copes with \n as well as \r\n line endings
		unique := make(map[string]struct{})
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if _, seen := unique[line]; !seen {
				unique[line] = struct{}{}
				lists[lang] = append(lists[lang], line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		total += len(unique)
	}

	if total == 0 {
		return nil, errors.ErrEmptyWords
	}
	return lists, nil
}
