package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
)

// PubMedAdapter searches and fetches bibliographic articles through the NCBI
// E-utilities pubmed database.
type PubMedAdapter struct {
	*eutilsClient
}

// NewPubMed creates a PubMed adapter.
func NewPubMed(cfg Config) *PubMedAdapter {
	return &PubMedAdapter{eutilsClient: newEUtilsClient(cfg)}
}

// Source implements Adapter.
func (a *PubMedAdapter) Source() content.SourceType { return content.SourcePubMed }

// Search finds up to max articles matching query: an esearch call for PMIDs
// followed by one efetch for the article records.
func (a *PubMedAdapter) Search(ctx context.Context, query string, max int) ([]content.Resource, error) {
	if max <= 0 {
		return nil, nil
	}

	body, err := a.get(ctx, "esearch.fcgi", url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(max)},
	})
	if err != nil {
		return nil, err
	}

	var sr esearchResult
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: decoding esearch response: %v", content.ErrAdapterUnavailable, err)
	}
	pmids := sr.ESearchResult.IDList
	if len(pmids) == 0 {
		return nil, nil
	}

	articles, err := a.fetchArticles(ctx, strings.Join(pmids, ","))
	if err != nil {
		return nil, err
	}

	resources := make([]content.Resource, 0, len(articles))
	for _, art := range articles {
		if art.PMID == "" {
			continue
		}
		resources = append(resources, *art.toResource())
	}
	return resources, nil
}

// FetchDetail fetches one article by PMID.
func (a *PubMedAdapter) FetchDetail(ctx context.Context, ref content.ResourceRef) (*content.Resource, error) {
	articles, err := a.fetchArticles(ctx, ref.SourceID)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 || articles[0].PMID == "" {
		return nil, fmt.Errorf("%w: pubmed article %s", content.ErrNotFound, ref.SourceID)
	}
	return articles[0].toResource(), nil
}

func (a *PubMedAdapter) fetchArticles(ctx context.Context, ids string) ([]pubmedArticle, error) {
	body, err := a.get(ctx, "efetch.fcgi", url.Values{
		"db":      {"pubmed"},
		"id":      {ids},
		"retmode": {"xml"},
	})
	if err != nil {
		return nil, err
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("%w: decoding efetch response: %v", content.ErrAdapterUnavailable, err)
	}
	return set.Articles, nil
}

// E-utilities efetch XML shapes for db=pubmed.

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID     string         `xml:"MedlineCitation>PMID"`
	Title    string         `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract []string       `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Journal  string         `xml:"MedlineCitation>Article>Journal>Title"`
	Year     string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	Authors  []pubmedAuthor `xml:"MedlineCitation>Article>AuthorList>Author"`
	Mesh     []string       `xml:"MedlineCitation>MeshHeadingList>MeshHeading>DescriptorName"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

func (art *pubmedArticle) toResource() *content.Resource {
	title := art.Title
	if title == "" {
		title = "Unknown Title"
	}
	journal := art.Journal
	if journal == "" {
		journal = "Unknown Journal"
	}

	authors := make([]string, 0, len(art.Authors))
	for _, au := range art.Authors {
		if au.LastName == "" {
			continue
		}
		name := au.LastName
		if au.ForeName != "" {
			name = au.ForeName + " " + name
		}
		authors = append(authors, name)
	}

	return &content.Resource{
		ID:       content.PubMedID(art.PMID),
		Title:    title,
		Source:   content.SourcePubMed,
		Type:     content.TypeArticle,
		SourceID: art.PMID,
		Content: &content.ArticleContent{
			Abstract:  strings.Join(art.Abstract, "\n"),
			Journal:   journal,
			Year:      art.Year,
			Authors:   authors,
			MeshTerms: art.Mesh,
			URL:       fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", art.PMID),
		},
	}
}
