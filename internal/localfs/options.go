package localfs

// WalkOptions configures the behavior of Walk.
type WalkOptions struct {
	// IncludeHidden includes hidden files and directories in the walk.
	// Default is false (hidden items excluded).
	IncludeHidden bool

	// SkipHiddenDirs skips descending into hidden directories entirely.
	// Only meaningful when IncludeHidden is false.
	SkipHiddenDirs bool
}

// ExpandOptions configures Expand.
type ExpandOptions struct {
	// Recursive descends into directory arguments. Without it a directory
	// argument is an error.
	Recursive bool

	// IncludeHidden keeps hidden files found while walking. Hidden files named
	// explicitly are always kept.
	IncludeHidden bool
}
