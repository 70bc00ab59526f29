// Package captions holds timed text: cue and track types, point-in-time
// queries, and a SubRip (.srt) codec that tolerates the malformed blocks
// found in real subtitle files.
package captions
