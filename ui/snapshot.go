package ui

import (
	"time"

	"ztop/dataset"
	"ztop/view"
)

// Frame is everything a Renderer needs for one redraw, built by the session
// loop. It is immutable once handed to a Renderer.
type Frame struct {
	GeneratedAt time.Time
	Rows        []dataset.Element

	Sort     view.Column
	Reverse  bool
	Auto     bool
	Children bool
	Depth    int
	Filter   string
	Interval time.Duration

	// Editing is set while the filter editor is open.
	Editing   bool
	EditText  string
	EditError string

	Refresh LatencySnapshot
}
