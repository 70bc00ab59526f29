// Package export runs the render pipeline end to end. A Session takes a
// project, lowers it to a segment plan, and drives an encode backend while
// reporting progress on a fixed poll interval. Sessions are single use:
// idle, then preparing, then exporting, then exactly one of completed,
// cancelled, or failed. Cancellation is cooperative and, once requested,
// takes precedence over a simultaneous natural completion.
package export
