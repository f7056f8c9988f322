// Package window shows a treemap in a native window.
//
// [Viewer] holds the navigation state: the tree, the directory in focus and
// the layout for the current window size. It knows nothing about the window
// system, so zooming and hit-testing work the same in tests. [Game] adapts a
// Viewer to ebiten: each frame it lays out the focus for the current window
// size through a [treemap.Memo], animates rectangles between layouts and
// maps mouse and keyboard input to zoom operations.
//
//	v, err := window.NewViewer(tree)
//	if err != nil { ... }
//	err = window.Run(window.NewGame(v), "squaremap")
//
// [treemap.Memo]: github.com/matzehuels/squaremap/pkg/treemap.Memo
package window
