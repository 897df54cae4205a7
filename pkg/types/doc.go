// Package types defines the state machine, configuration record, value
// types and standard errors shared by the workbench core.
//
// Everything in this package is pure: no I/O and no package-level mutable
// state. The workspace aggregate lives in pkg/workspace.
package types
