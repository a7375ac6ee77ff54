package httpapi

import (
	"strings"

	"github.com/letmevibethatforyou/hnsearch"
)

// searchResponse is the subset of the search API response we use.
type searchResponse struct {
	Hits        []hit `json:"hits"`
	Page        int   `json:"page"`
	NbPages     int   `json:"nbPages"`
	NbHits      int   `json:"nbHits"`
	HitsPerPage int   `json:"hitsPerPage"`
}

// hit is a single story or comment. Numeric fields are null for some hit
// types, which leaves them at zero.
type hit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	StoryTitle  string `json:"story_title"`
	URL         string `json:"url"`
	StoryURL    string `json:"story_url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
}

func (sr searchResponse) page() hnsearch.Page {
	items := make([]hnsearch.Item, 0, len(sr.Hits))
	for _, h := range sr.Hits {
		if h.ObjectID == "" {
			continue
		}
		items = append(items, h.item())
	}
	return hnsearch.Page{
		Items:   items,
		Page:    sr.Page,
		NbPages: sr.NbPages,
	}
}

func (h hit) item() hnsearch.Item {
	title := strings.TrimSpace(h.Title)
	if title == "" {
		title = strings.TrimSpace(h.StoryTitle)
	}
	url := h.URL
	if url == "" {
		url = h.StoryURL
	}
	return hnsearch.Item{
		ID:           h.ObjectID,
		Title:        title,
		URL:          url,
		Author:       h.Author,
		CommentCount: max(h.NumComments, 0),
		Score:        max(h.Points, 0),
	}
}
