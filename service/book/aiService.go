package booksvc

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"booknexus/model"
)

const summaryFallback = "Unable to generate summary at this time."

// first JSON array in the response, tolerating prose around it
var idArrayRe = regexp.MustCompile(`(?s)\[.*?\]`)

// Summary asks the text-generation collaborator for a short book summary.
// Collaborator failures degrade to a placeholder rather than an error.
func (s *service) Summary(ctx context.Context, bookID int64) (string, error) {
	b, err := s.Get(ctx, bookID)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Provide a concise summary of the book %q by %s.", b.Title, b.Author)
	if b.Description != "" {
		prompt += " Here's additional information about the book: " + b.Description
	}

	text, err := s.ai.GenerateContent(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		return summaryFallback, nil
	}
	return text, nil
}

// AISearch delegates ranking to the collaborator: it sends a truncated
// catalog plus the query and filters locally by the returned id set. Any
// collaborator or parse failure degrades to an empty result.
func (s *service) AISearch(ctx context.Context, query string) ([]model.Book, error) {
	books, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, makeErr(ErrEmptyCatalog)
	}

	text, err := s.ai.GenerateContent(ctx, recommendPrompt(query, books))
	if err != nil {
		return []model.Book{}, nil
	}

	ids := parseIDArray(text)
	if len(ids) == 0 {
		return []model.Book{}, nil
	}

	out := make([]model.Book, 0, len(ids))
	for _, b := range books {
		if ids[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func recommendPrompt(query string, books []model.Book) string {
	type entry struct {
		ID           int64  `json:"id"`
		Title        string `json:"title"`
		Author       string `json:"author"`
		Subject      string `json:"subject"`
		ResearchArea string `json:"researchArea"`
		Description  string `json:"description"`
	}

	list := make([]entry, 0, len(books))
	for _, b := range books {
		desc := b.Description
		if len(desc) > 100 {
			desc = desc[:100] + "..."
		}
		list = append(list, entry{
			ID:           b.ID,
			Title:        b.Title,
			Author:       b.Author,
			Subject:      b.Subject,
			ResearchArea: b.ResearchArea,
			Description:  desc,
		})
	}
	catalog, _ := json.MarshalIndent(list, "", "  ")

	return fmt.Sprintf(`
You are a library assistant. A user is searching for books with the query: %q
Here is our catalog of books:
%s

Return ONLY a JSON array of book IDs that match the search query.
Consider relevance to subject, research area, title, author, and description.
Format your response as a valid JSON array of numbers like this: [1, 4, 7]
`, query, catalog)
}

func parseIDArray(text string) map[int64]bool {
	m := idArrayRe.FindString(text)
	if m == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(m), &ids); err != nil {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
