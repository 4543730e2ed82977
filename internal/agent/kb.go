package agent

import "triage/internal/dataset"

// KnowledgeBase is a total, static lookup from category to guidance docs.
// Unknown or "other" categories get the generic fallback set.
type KnowledgeBase struct {
	docs map[dataset.Category][]string
}

func NewKnowledgeBase(docs map[dataset.Category][]string) KnowledgeBase {
	return KnowledgeBase{docs: docs}
}

// Docs returns the ordered doc snippets for the category. The returned slice
// is a copy; the underlying table never changes.
func (kb KnowledgeBase) Docs(category dataset.Category) []string {
	docs, ok := kb.docs[category]
	if !ok {
		docs = kb.docs[dataset.CategoryOther]
	}
	return append([]string(nil), docs...)
}
