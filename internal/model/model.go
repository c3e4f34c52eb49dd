package model

// Move describes one rename/relocation. Both paths are absolute.
type Move struct {
	Source      string
	Destination string
}

// FileAction is what a run did to a single path.
type FileAction string

const (
	ActionMove    FileAction = "move"
	ActionRewrite FileAction = "rewrite"
)

// Summary holds the results of an operation for display.
type Summary struct {
	Moved     []string
	Rewritten []string
	Skipped   []string
	Failed    []string
	Cancelled bool
	Message   string
}
