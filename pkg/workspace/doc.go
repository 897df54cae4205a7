// Package workspace implements the workspace aggregate: the three-level
// file tree (path, root, file), the reference catalog with typed
// attributes, the root/reference association, and the state operations
// that keep container states consistent.
//
// Container states are never stored. FilePath, FileRoot and Reference
// derive their state from their children on every read with types.Derive.
//
// A Workspace is not safe for concurrent use. Views share one live
// instance and serialize their calls on the UI thread.
package workspace
