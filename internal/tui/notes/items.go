package notes

import (
	"fmt"
	"strings"

	"github.com/stashmd/stash/internal/search"
)

type resultItem struct {
	result search.Result
}

func newResultItem(r search.Result) resultItem {
	return resultItem{result: r}
}

func (i resultItem) Title() string {
	title := i.result.Note.Title
	if title == "" {
		title = "(untitled)"
	}
	return title
}

func (i resultItem) Description() string {
	n := i.result.Note

	var parts []string
	parts = append(parts, n.Created.Format("2006-01-02"))
	if len(n.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(n.Tags, " #"))
	}
	if len(n.Projects) > 0 {
		parts = append(parts, "+"+strings.Join(n.Projects, " +"))
	}
	if len(n.LinksTo) > 0 {
		parts = append(parts, fmt.Sprintf("%d links", len(n.LinksTo)))
	}
	if i.result.Score > 0 {
		parts = append(parts, fmt.Sprintf("score %.0f", i.result.Score))
	}
	return strings.Join(parts, " · ")
}

func (i resultItem) FilterValue() string {
	return i.result.Note.Title
}
