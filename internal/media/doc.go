// Package media resolves clip source references into probed assets. The
// default loader shells out to ffprobe; callers that do not want a process
// boundary in tests supply their own Loader.
package media
