package watcher

import (
	"path/filepath"
	"time"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// EventClassifier decides whether a batch of events can change the package
// graph: only the workspace file, manifests and removed or renamed
// directories matter.
type EventClassifier struct {
	workspaceFile string
	manifestFile  string
}

func NewEventClassifier(workspaceFile, manifestFile string) *EventClassifier {
	return &EventClassifier{
		workspaceFile: workspaceFile,
		manifestFile:  manifestFile,
	}
}

func (c *EventClassifier) Relevant(event FileEvent) bool {
	base := filepath.Base(event.Path)
	if base == c.workspaceFile || base == c.manifestFile {
		return true
	}

	// A deleted or renamed directory can take manifests with it, and fsnotify
	// does not report the files inside.
	if event.Type != EventDelete && event.Type != EventRename {
		return false
	}
	return filepath.Ext(base) == ""
}

func (c *EventClassifier) RelevantBatch(events []FileEvent) []FileEvent {
	var relevant []FileEvent
	for _, e := range events {
		if c.Relevant(e) {
			relevant = append(relevant, e)
		}
	}
	return relevant
}
