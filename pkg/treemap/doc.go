// Package treemap composes a size tree with the squarify engine.
//
// [Build] lays out the children of a directory inside a rectangle, largest
// first, and recurses into sub-directories up to a configurable depth. The
// result is a [Layout]: a flat list of positioned [Cell] values, each with a
// back-reference to the tree node it shows. Layouts carry JSON and BSON tags
// so they can be written to disk or stored in a cache.
//
// Colors are assigned by a [Palette] as cells are emitted. [Memo] caches
// squarify results for repeated frames over an unchanged tree and window.
package treemap
