package analysis

import (
	"fmt"
	"strings"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// KeyPoints is the per-source-type summary extracted from a resource. Only
// the fields relevant to the resource's source type are populated.
type KeyPoints struct {
	Title                string   `json:"title"`
	MainFindings         []string `json:"main_findings,omitempty"`
	Methodology          []string `json:"methodology,omitempty"`
	ClinicalImplications []string `json:"clinical_implications,omitempty"`
	MainConcepts         []string `json:"main_concepts,omitempty"`
	KeyDefinitions       []string `json:"key_definitions,omitempty"`
	ClinicalCorrelations []string `json:"clinical_correlations,omitempty"`
	MainPoints           []string `json:"main_points,omitempty"`
	KeyTerms             []string `json:"key_terms,omitempty"`
}

// Extractor is the pluggable analysis collaborator. It scans text only and
// carries no invariants of its own; implementations are freely replaceable.
type Extractor interface {
	KeyPoints(r *content.Resource) *KeyPoints
	KeyTerms(r *content.Resource) []string
}

// HeuristicExtractor extracts key points by indicator-phrase scanning.
type HeuristicExtractor struct{}

// NewExtractor returns the default heuristic extractor.
func NewExtractor() *HeuristicExtractor { return &HeuristicExtractor{} }

var (
	findingsIndicators = []string{
		"we found", "results showed", "demonstrated", "revealed",
		"observed", "concluded", "findings",
	}
	methodIndicators = []string{
		"method", "study design", "we conducted", "participants",
		"patients", "subjects", "sample", "procedure", "analysis",
	}
	implicationIndicators = []string{
		"implications", "clinical", "practice", "treatment",
		"management", "care", "patients", "therapy", "intervention",
	}
	documentIndicators = []string{
		"important", "significant", "key", "essential", "crucial",
		"demonstrated", "found", "shows", "reveals", "concludes",
	}
	stopWords = map[string]bool{
		"about": true, "these": true, "those": true, "their": true, "there": true,
	}
)

// KeyPoints implements Extractor.
func (x *HeuristicExtractor) KeyPoints(r *content.Resource) *KeyPoints {
	kp := &KeyPoints{Title: r.Title, KeyTerms: x.KeyTerms(r)}

	switch r.Source {
	case content.SourcePubMed:
		abstract := articleAbstract(r)
		kp.MainFindings = fallback(
			indicatorSentences(abstract, findingsIndicators, 3),
			"The article's main findings could not be automatically extracted. Please review the full abstract.")
		kp.Methodology = fallback(
			indicatorSentences(abstract, methodIndicators, 2),
			"The article's methodology could not be automatically extracted. Please review the full abstract.")
		kp.ClinicalImplications = fallback(
			indicatorSentences(abstract, implicationIndicators, 2),
			"The clinical implications could not be automatically extracted. Please review the full abstract.")

	case content.SourceBookshelf:
		kp.MainConcepts = x.mainConcepts(r)
		kp.KeyDefinitions = x.keyDefinitions(r)
		kp.ClinicalCorrelations = x.clinicalCorrelations(r)

	case content.SourceUserProvided:
		kp.MainPoints = x.mainPoints(r)
	}
	return kp
}

// KeyTerms implements Extractor: MeSH terms when present, otherwise the most
// frequent long words from title and abstract.
func (x *HeuristicExtractor) KeyTerms(r *content.Resource) []string {
	if art, ok := r.Content.(*content.ArticleContent); ok && len(art.MeshTerms) > 0 {
		return head(art.MeshTerms, 5)
	}

	var terms []string
	for _, word := range strings.Fields(r.Title) {
		if len(word) > 5 && !stopWords[strings.ToLower(word)] {
			terms = append(terms, word)
		}
	}

	if abstract := articleAbstract(r); abstract != "" {
		freq := make(map[string]int)
		var order []string
		for _, word := range strings.Fields(abstract) {
			clean := strings.Map(alnumOnly, word)
			if len(clean) <= 5 || stopWords[strings.ToLower(clean)] {
				continue
			}
			if freq[clean] == 0 {
				order = append(order, clean)
			}
			freq[clean]++
		}
		// Stable frequency ranking: ties keep first appearance order.
		for range order {
			best := ""
			for _, w := range order {
				if freq[w] > 0 && (best == "" || freq[w] > freq[best]) {
					best = w
				}
			}
			if best == "" {
				break
			}
			freq[best] = 0
			if !contains(terms, best) {
				terms = append(terms, best)
			}
			if len(terms) >= 5 {
				break
			}
		}
	}
	return head(terms, 5)
}

func (x *HeuristicExtractor) mainConcepts(r *content.Resource) []string {
	var concepts []string
	if r.Title != "" {
		concepts = append(concepts, fmt.Sprintf("Understanding %s", r.Title))
	}
	if ch, ok := r.Content.(*content.ChapterContent); ok {
		for _, sec := range head(ch.Sections, 3) {
			if sec.Title != "" {
				concepts = append(concepts, sec.Title)
			}
		}
	}
	generic := []string{
		"Basic Principles",
		"Clinical Applications",
		"Physiological Mechanisms",
		"Anatomical Relationships",
	}
	for _, c := range generic {
		if len(concepts) >= 3 {
			break
		}
		if !contains(concepts, c) {
			concepts = append(concepts, c)
		}
	}
	return head(concepts, 5)
}

func (x *HeuristicExtractor) keyDefinitions(r *content.Resource) []string {
	var defs []string
	if ch, ok := r.Content.(*content.ChapterContent); ok {
		for _, sec := range ch.Sections {
			for _, line := range strings.Split(sec.Content, "\n") {
				line = strings.TrimSpace(line)
				if len(line) >= 200 || line == "" {
					continue
				}
				if strings.Contains(line, ":") || strings.Contains(line, " - ") {
					defs = append(defs, line)
				}
			}
		}
	}
	return head(defs, 5)
}

func (x *HeuristicExtractor) clinicalCorrelations(r *content.Resource) []string {
	var out []string
	if ch, ok := r.Content.(*content.ChapterContent); ok {
		for _, sec := range ch.Sections {
			if strings.Contains(strings.ToLower(sec.Title), "clinical") {
				out = append(out, sec.Title)
			}
			for _, sentence := range strings.Split(sec.Content, ".") {
				lower := strings.ToLower(sentence)
				if len(strings.TrimSpace(sentence)) > 30 &&
					(strings.Contains(lower, "clinic") || strings.Contains(lower, "patient") || strings.Contains(lower, "disease")) {
					out = append(out, strings.TrimSpace(sentence)+".")
				}
			}
		}
	}
	return head(out, 3)
}

func (x *HeuristicExtractor) mainPoints(r *content.Resource) []string {
	doc, ok := r.Content.(*content.DocumentContent)
	if !ok {
		return nil
	}

	var points []string
	paragraphs := strings.Split(doc.Content, "\n\n")
	if len(paragraphs) > 0 && len(paragraphs[0]) > 50 {
		points = append(points, paragraphs[0])
	}
	for _, para := range paragraphs[1:] {
		points = append(points, indicatorSentences(para, documentIndicators, 5)...)
	}

	// Pad with leading sentences when indicator scanning came up short.
	if len(points) < 3 {
		for _, sentence := range head(strings.Split(doc.Content, "."), 5) {
			s := strings.TrimSpace(sentence)
			if len(s) > 30 && !contains(points, s+".") {
				points = append(points, s+".")
			}
			if len(points) >= 5 {
				break
			}
		}
	}
	return head(points, 5)
}

// indicatorSentences returns up to max sentences containing any indicator.
func indicatorSentences(text string, indicators []string, max int) []string {
	var out []string
	for _, sentence := range strings.Split(text, ".") {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) <= 20 {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, ind := range indicators {
			if strings.Contains(lower, ind) {
				out = append(out, trimmed+".")
				break
			}
		}
		if len(out) >= max {
			break
		}
	}
	return out
}

func articleAbstract(r *content.Resource) string {
	if art, ok := r.Content.(*content.ArticleContent); ok {
		return art.Abstract
	}
	return ""
}

func fallback(points []string, msg string) []string {
	if len(points) == 0 {
		return []string{msg}
	}
	return points
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func alnumOnly(r rune) rune {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return r
	}
	return -1
}
