package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
	"github.com/ryoureddy/medadapt-content-server/internal/server/resolve"
	"github.com/ryoureddy/medadapt-content-server/internal/server/topics"
)

// StudentLevel is a medical curriculum stage used to pick resource difficulty
// and phrase learning objectives.
type StudentLevel string

const (
	LevelFirstYear     StudentLevel = "first_year"
	LevelSecondYear    StudentLevel = "second_year"
	LevelClinicalYears StudentLevel = "clinical_years"
)

// Difficulty maps a student level onto the resource difficulty scale.
// Unknown levels fall back to intermediate.
func (l StudentLevel) Difficulty() content.Difficulty {
	switch l {
	case LevelFirstYear:
		return content.DifficultyBasic
	case LevelClinicalYears:
		return content.DifficultyAdvanced
	default:
		return content.DifficultyIntermediate
	}
}

// ResourceSummary is a compact pointer to a full resource.
type ResourceSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Rationale string `json:"rationale,omitempty"`
}

// TopicOverview is a synthesized survey of a medical topic.
type TopicOverview struct {
	Topic                string            `json:"topic"`
	Definition           string            `json:"definition"`
	KeyConcepts          []string          `json:"key_concepts"`
	RelatedTopics        []string          `json:"related_topics"`
	RecommendedResources []ResourceSummary `json:"recommended_resources"`
}

// LearningPlan is a level-tailored study plan for a topic.
type LearningPlan struct {
	Topic              string            `json:"topic"`
	StudentLevel       StudentLevel      `json:"student_level"`
	Definition         string            `json:"definition"`
	LearningObjectives []string          `json:"learning_objectives"`
	KeyConcepts        []string          `json:"key_concepts"`
	SuggestedResources []ResourceSummary `json:"suggested_resources"`
	RelatedTopics      []string          `json:"related_topics"`
}

// Searcher is the slice of the resolution engine the advisor needs.
type Searcher interface {
	SearchContent(ctx context.Context, query string, f resolve.Filters, maxResults int) ([]content.Resource, error)
}

// Advisor composes topic overviews and learning plans from search results
// and the topic graph.
type Advisor struct {
	search Searcher
	topics topics.Repository
	log    *zap.Logger
}

func NewAdvisor(search Searcher, repo topics.Repository, log *zap.Logger) *Advisor {
	return &Advisor{search: search, topics: repo, log: log}
}

// TopicOverview builds an overview from the top search hits for the topic.
// Topic graph failures degrade to generated related-topic suggestions.
func (a *Advisor) TopicOverview(ctx context.Context, topic string) (*TopicOverview, error) {
	resources, err := a.search.SearchContent(ctx, topic, resolve.Filters{}, 5)
	if err != nil {
		return nil, fmt.Errorf("topic overview search: %w", err)
	}

	related, err := a.topics.Related(ctx, topic, topics.DefaultRelatedLimit)
	if err != nil {
		a.log.Warn("related topics lookup failed", zap.String("topic", topic), zap.Error(err))
		related = nil
	}
	if len(related) == 0 {
		related = []string{
			topic + " pathophysiology",
			topic + " anatomy",
			topic + " clinical aspects",
		}
	}

	ov := &TopicOverview{
		Topic:         topic,
		Definition:    extractDefinition(topic, resources),
		KeyConcepts:   extractKeyConcepts(topic, resources),
		RelatedTopics: related,
	}
	for _, r := range head(resources, 3) {
		ov.RecommendedResources = append(ov.RecommendedResources, ResourceSummary{
			ID:    r.ID,
			Title: r.Title,
			Type:  string(r.Type),
		})
	}
	return ov, nil
}

// SuggestResources recommends resources at the difficulty implied by the
// student level, each with a rationale.
func (a *Advisor) SuggestResources(ctx context.Context, topic string, level StudentLevel) ([]ResourceSummary, error) {
	resources, err := a.search.SearchContent(ctx, topic, resolve.Filters{Difficulty: level.Difficulty()}, 5)
	if err != nil {
		return nil, fmt.Errorf("suggest resources: %w", err)
	}

	out := make([]ResourceSummary, 0, len(resources))
	for _, r := range resources {
		out = append(out, ResourceSummary{
			ID:        r.ID,
			Title:     r.Title,
			Type:      string(r.Type),
			Rationale: rationale(&r, topic, level),
		})
	}
	return out, nil
}

// LearningPlan combines the overview, level objectives, and suggested
// resources into a single plan.
func (a *Advisor) LearningPlan(ctx context.Context, topic string, level StudentLevel) (*LearningPlan, error) {
	overview, err := a.TopicOverview(ctx, topic)
	if err != nil {
		return nil, err
	}
	suggested, err := a.SuggestResources(ctx, topic, level)
	if err != nil {
		return nil, err
	}

	return &LearningPlan{
		Topic:              topic,
		StudentLevel:       level,
		Definition:         overview.Definition,
		LearningObjectives: objectives(topic, level),
		KeyConcepts:        overview.KeyConcepts,
		SuggestedResources: suggested,
		RelatedTopics:      overview.RelatedTopics,
	}, nil
}

func objectives(topic string, level StudentLevel) []string {
	switch level {
	case LevelFirstYear:
		return []string{
			fmt.Sprintf("Define key terms related to %s", topic),
			fmt.Sprintf("Identify basic structures and components involved in %s", topic),
			fmt.Sprintf("Explain fundamental principles of %s", topic),
			fmt.Sprintf("Recognize the relationship between %s and related systems", topic),
		}
	case LevelSecondYear:
		return []string{
			fmt.Sprintf("Apply principles of %s to simplified clinical scenarios", topic),
			fmt.Sprintf("Analyze mechanisms underlying %s", topic),
			fmt.Sprintf("Compare normal and abnormal functioning related to %s", topic),
			fmt.Sprintf("Integrate knowledge of %s with pathophysiological concepts", topic),
		}
	default:
		return []string{
			fmt.Sprintf("Evaluate clinical presentations related to %s abnormalities", topic),
			fmt.Sprintf("Develop diagnostic approaches for conditions involving %s", topic),
			fmt.Sprintf("Interpret clinical findings related to %s", topic),
			fmt.Sprintf("Apply evidence-based principles to management of %s disorders", topic),
		}
	}
}

func rationale(r *content.Resource, topic string, level StudentLevel) string {
	switch r.Source {
	case content.SourcePubMed:
		return fmt.Sprintf("This peer-reviewed article provides evidence-based information on %s appropriate for %s understanding.", topic, level)
	case content.SourceBookshelf:
		return fmt.Sprintf("This textbook chapter offers comprehensive coverage of %s fundamentals that align with %s curriculum.", topic, level)
	case content.SourceUserProvided:
		return fmt.Sprintf("This resource was previously uploaded and contains relevant information about %s.", topic)
	default:
		return fmt.Sprintf("This resource contains key information about %s presented at a %s level.", topic, level)
	}
}

// extractDefinition scans the leading sentences of each resource's text for
// one that mentions the topic.
func extractDefinition(topic string, resources []content.Resource) string {
	lowerTopic := strings.ToLower(topic)
	for _, r := range resources {
		for _, text := range resourceTexts(&r) {
			for _, sentence := range head(strings.Split(text, "."), 3) {
				trimmed := strings.TrimSpace(sentence)
				if len(trimmed) > 30 && strings.Contains(strings.ToLower(trimmed), lowerTopic) {
					return trimmed + "."
				}
			}
		}
	}
	return fmt.Sprintf("The topic %s requires further exploration to provide a comprehensive definition.", topic)
}

// extractKeyConcepts pulls MeSH terms and chapter titles mentioning the
// topic, padded with generic concepts up to five.
func extractKeyConcepts(topic string, resources []content.Resource) []string {
	lowerTopic := strings.ToLower(topic)
	var concepts []string

	for _, r := range resources {
		if art, ok := r.Content.(*content.ArticleContent); ok {
			for _, term := range art.MeshTerms {
				if strings.Contains(strings.ToLower(term), lowerTopic) {
					concepts = append(concepts, term)
				}
			}
		}
	}
	for _, r := range resources {
		if book, ok := r.Content.(*content.TextbookContent); ok {
			for _, ch := range book.Chapters {
				if strings.Contains(strings.ToLower(ch.Title), lowerTopic) {
					concepts = append(concepts, ch.Title)
				}
			}
		}
	}

	if len(concepts) < 3 {
		generic := []string{
			fmt.Sprintf("Fundamental principles of %s", topic),
			fmt.Sprintf("Clinical significance of %s", topic),
			fmt.Sprintf("Anatomical considerations in %s", topic),
			fmt.Sprintf("Physiological mechanisms of %s", topic),
			fmt.Sprintf("Pathological changes in %s", topic),
		}
		for _, c := range generic {
			if !contains(concepts, c) {
				concepts = append(concepts, c)
				if len(concepts) >= 5 {
					break
				}
			}
		}
	}
	return head(concepts, 5)
}

// resourceTexts yields the searchable prose of a resource payload.
func resourceTexts(r *content.Resource) []string {
	switch c := r.Content.(type) {
	case *content.ArticleContent:
		return []string{c.Abstract}
	case *content.ChapterContent:
		texts := make([]string, 0, len(c.Sections))
		for _, sec := range c.Sections {
			texts = append(texts, sec.Content)
		}
		return texts
	case *content.DocumentContent:
		return []string{c.Content}
	default:
		return nil
	}
}
