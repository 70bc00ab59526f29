package composition

import (
	"cutroom/internal/timeline"
)

// FlattenCompounds returns a deep copy of the project in which every
// compound clip has been replaced by its member clips, recursively. Members
// are spliced into the owning track at the compound's position, inner
// tracks in order, clips in list order, keeping their own time ranges.
//
// Lowering does not expand compounds on its own; callers that want nested
// timelines rendered run this first and hand the result to Build.
func FlattenCompounds(project timeline.Project) timeline.Project {
	flat := project.Clone()
	for i := range flat.Tracks {
		flat.Tracks[i].Clips = flattenClips(flat.Tracks[i].Clips)
	}
	return flat
}

func flattenClips(clips []timeline.Clip) []timeline.Clip {
	out := make([]timeline.Clip, 0, len(clips))
	for i := range clips {
		clip := &clips[i]
		if clip.Kind != timeline.ClipCompound {
			out = append(out, clip.Clone())
			continue
		}
		for j := range clip.SubTimeline {
			out = append(out, flattenClips(clip.SubTimeline[j].Clips)...)
		}
	}
	return out
}
