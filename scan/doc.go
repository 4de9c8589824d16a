// Package scan recovers xref tables from many PDF files at once.
//
// [Discover] expands files and directories into a sorted list of PDF paths,
// [Files] decodes them on a bounded worker pool and streams one [Result] per
// file, and [Run] ties both together while keeping a [Summary]. A file whose
// table cannot be recovered produces a failed Result; it never stops the run.
//
// Each worker opens, decodes and closes its own file, so no state is shared
// between files.
package scan
