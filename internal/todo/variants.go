package todo

import "sort"

var kindPrefixes = map[string]string{
	"work":     "🔨 ",
	"personal": "👤 ",
	"shopping": "🛒 ",
	"urgent":   "🔴 ",
	"health":   "💪 ",
}

// TaskKinds returns the kinds understood by TypedTitle, sorted.
func TaskKinds() []string {
	kinds := make([]string, 0, len(kindPrefixes))
	for k := range kindPrefixes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// TypedTitle prefixes title with the marker of kind. Unknown kinds leave the
// title as is.
func TypedTitle(kind, title string) string {
	return kindPrefixes[kind] + title
}

// ExternalTask is the task shape used by other tools: different field names
// and a 0/1 completion flag.
type ExternalTask struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Tag       string `json:"tag"`
}

// FromExternal maps an external record onto Task fields. ID and CreatedAt are
// left for the Store to assign.
func FromExternal(e ExternalTask) Task {
	return Task{
		Title:    e.Name,
		Done:     e.Completed != 0,
		Category: e.Tag,
	}
}

func ToExternal(t *Task) ExternalTask {
	e := ExternalTask{Name: t.Title, Tag: t.Category}
	if t.Done {
		e.Completed = 1
	}
	return e
}
