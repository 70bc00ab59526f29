// Package timeline defines the editing data model: time ranges, clips,
// tracks, transitions, and the project aggregate that owns them.
//
// Everything here is a plain value type. Mutating helpers such as Trim,
// Split, and GroupClips operate on a project held in memory; persistence
// and rendering live elsewhere and consume these values as documents.
// All times are seconds as float64, and all ranges are half-open.
package timeline
