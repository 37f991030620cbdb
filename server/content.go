package server

import (
	"sort"
	"time"

	"github.com/jrsteele09/member-portal/internal/utils"
)

type ForumCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ThreadCount int    `json:"thread_count"`
}

type NewsRelease struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// content is the fixed data the feature endpoints serve.
type content struct {
	forums []ForumCategory
	news   []NewsRelease
}

func defaultContent() content {
	return content{
		forums: []ForumCategory{
			{ID: 1, Name: "Announcements", Description: "News from the association", ThreadCount: 12},
			{ID: 2, Name: "Clinical Practice", Description: "Case discussion and guidelines", ThreadCount: 48},
			{ID: 3, Name: "Residents", Description: "Training, boards and fellowships", ThreadCount: 23},
		},
		news: []NewsRelease{
			{ID: 1, Title: "Annual meeting registration opens", Status: "published", PublishedAt: utils.Ptr(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))},
			{ID: 2, Title: "New board members announced", Status: "published", PublishedAt: utils.Ptr(time.Date(2025, 5, 19, 9, 0, 0, 0, time.UTC))},
			{ID: 3, Title: "Dues reminder for the coming year", Status: "draft"},
		},
	}
}

// newsNewestFirst orders releases by publication date; drafts come first.
func newsNewestFirst(news []NewsRelease) []NewsRelease {
	out := append([]NewsRelease(nil), news...)
	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].PublishedAt == nil) != (out[j].PublishedAt == nil) {
			return out[i].PublishedAt == nil
		}
		return utils.Value(out[i].PublishedAt).After(utils.Value(out[j].PublishedAt))
	})
	return out
}
