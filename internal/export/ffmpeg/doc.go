// Package ffmpeg renders segment plans with the ffmpeg command-line tool.
// Plans become a single invocation: one input per unique source file, a
// trim-and-concat filter graph in plan order, and the preset's codec and
// container settings. Progress arrives as key=value lines on stdout.
//
// No cutroom project types leak in here beyond the plan and preset; the
// package can be swapped for another backend behind the export.Encoder
// interface.
package ffmpeg
