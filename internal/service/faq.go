package service

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FAQCount - FAQ 메뉴 항목 수
const FAQCount = 10

var ErrInvalidFAQ = errors.New("invalid faq table")

//go:embed faq.yaml
var defaultFAQYAML []byte

// FAQEntry - FAQ 메뉴 한 항목
type FAQEntry struct {
	Index  int    `yaml:"index"`
	Prompt string `yaml:"prompt"`
	Answer string `yaml:"answer"`
}

// FAQTable - 1..FAQCount 순서로 정렬된 FAQ 목록
type FAQTable struct {
	entries []FAQEntry
}

type faqFile struct {
	FAQs []FAQEntry `yaml:"faqs"`
}

// DefaultFAQTable loads the embedded FAQ table.
func DefaultFAQTable() (*FAQTable, error) {
	return ParseFAQTable(defaultFAQYAML)
}

// ParseFAQTable decodes and validates a FAQ table.
// Every index in 1..FAQCount must be present exactly once with a non-empty prompt and answer.
func ParseFAQTable(data []byte) (*FAQTable, error) {
	var file faqFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFAQ, err)
	}

	entries := make([]FAQEntry, FAQCount)
	seen := make(map[int]bool, FAQCount)
	for _, e := range file.FAQs {
		if e.Index < 1 || e.Index > FAQCount {
			return nil, fmt.Errorf("%w: index %d out of range 1..%d", ErrInvalidFAQ, e.Index, FAQCount)
		}
		if seen[e.Index] {
			return nil, fmt.Errorf("%w: duplicate index %d", ErrInvalidFAQ, e.Index)
		}
		e.Prompt = strings.TrimSpace(e.Prompt)
		e.Answer = strings.TrimSpace(e.Answer)
		if e.Prompt == "" || e.Answer == "" {
			return nil, fmt.Errorf("%w: index %d has empty prompt or answer", ErrInvalidFAQ, e.Index)
		}
		seen[e.Index] = true
		entries[e.Index-1] = e
	}

	if len(seen) != FAQCount {
		var missing []string
		for i := 1; i <= FAQCount; i++ {
			if !seen[i] {
				missing = append(missing, fmt.Sprint(i))
			}
		}
		return nil, fmt.Errorf("%w: missing index %s", ErrInvalidFAQ, strings.Join(missing, ", "))
	}

	return &FAQTable{entries: entries}, nil
}

// Lookup returns the entry for a 1-based menu index.
func (t *FAQTable) Lookup(index int) (FAQEntry, bool) {
	if index < 1 || index > len(t.entries) {
		return FAQEntry{}, false
	}
	return t.entries[index-1], true
}

// Prompts returns the menu prompts in index order.
func (t *FAQTable) Prompts() []string {
	prompts := make([]string, len(t.entries))
	for i, e := range t.entries {
		prompts[i] = e.Prompt
	}
	return prompts
}
