package composition

import (
	"context"
	"fmt"
	"log/slog"

	"cutroom/internal/logging"
	"cutroom/internal/media"
	"cutroom/internal/services"
	"cutroom/internal/timeline"
)

// Builder lowers a project into a segment plan. It is a read-only consumer
// of the project graph; clips are never mutated.
//
// The concatenation policy is cursor-based: within each track, clips are
// placed back to back in list order starting at 0, and a clip's own
// timeRange.start selects the slice of the source asset rather than the
// placement on the output timeline. Tracks do not share cursors, so two
// video tracks both start placing at 0 and the backend decides layering.
type Builder struct {
	loader media.Loader
	logger *slog.Logger
}

// BuilderOption customises builder construction.
type BuilderOption func(*Builder)

// WithLogger attaches a logger for lowering diagnostics.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder constructs a Builder around an asset loader.
func NewBuilder(loader media.Loader, opts ...BuilderOption) *Builder {
	b := &Builder{
		loader: loader,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build lowers the project. The returned plan is deterministic for a given
// project; asset resolution is cached per call so each distinct source is
// probed once.
func (b *Builder) Build(ctx context.Context, project *timeline.Project) (*Plan, error) {
	if project == nil {
		return nil, services.Wrap(services.ErrComposition, "composition", "build", "no project given", nil)
	}
	if b.loader == nil {
		return nil, services.Wrap(services.ErrComposition, "composition", "build", "no asset loader configured", nil)
	}
	if err := project.Validate(); err != nil {
		return nil, services.Wrap(services.ErrComposition, "composition", "build",
			fmt.Sprintf("project %s failed validation", project.ID), err)
	}

	state := &buildState{
		plan:   &Plan{ProjectID: project.ID},
		assets: make(map[string]media.Asset),
	}

	for i := range project.Tracks {
		track := &project.Tracks[i]
		switch track.Kind {
		case timeline.TrackVideo:
			if !track.IsVisible {
				b.skipTrack(state, track, "track is hidden")
				continue
			}
			if err := b.lowerVideoTrack(ctx, state, track); err != nil {
				return nil, err
			}
		case timeline.TrackAudio:
			if track.IsMuted {
				b.skipTrack(state, track, "track is muted")
				continue
			}
			if err := b.lowerAudioTrack(ctx, state, track); err != nil {
				return nil, err
			}
		default:
			// Overlay, subtitle, and effect tracks are not lowered here;
			// they pass through for a rendering collaborator.
			state.plan.Passthrough = append(state.plan.Passthrough, track.Clone())
		}
	}

	b.logger.Info("composition plan built",
		logging.String(logging.FieldComponent, "composition"),
		logging.String("project_id", project.ID),
		logging.Int("video_segments", len(state.plan.Video)),
		logging.Int("audio_segments", len(state.plan.Audio)),
		logging.Int("passthrough_tracks", len(state.plan.Passthrough)),
		logging.Int("skipped_clips", len(state.plan.Skipped)),
		logging.Float64("duration_seconds", state.plan.Duration()),
	)
	return state.plan, nil
}

type buildState struct {
	plan   *Plan
	assets map[string]media.Asset
}

// lowerVideoTrack concatenates the track's video clips and bridges their
// audio onto the audio program when neither the clip nor the track mutes it.
func (b *Builder) lowerVideoTrack(ctx context.Context, state *buildState, track *timeline.Track) error {
	cursor := 0.0
	for i := range track.Clips {
		clip := &track.Clips[i]
		switch clip.Kind {
		case timeline.ClipVideo, timeline.ClipImage:
		case timeline.ClipCompound:
			// Nested timelines are not expanded here. FlattenCompounds
			// pre-flattens for callers that want members lowered.
			b.skipClip(state, track, clip, "compound clips are not expanded during lowering")
			continue
		default:
			b.skipClip(state, track, clip, fmt.Sprintf("%s clips are not lowered on a video track", clip.Kind))
			continue
		}
		if !clip.Source.Resolvable() {
			b.skipClip(state, track, clip, "clip has no resolvable source")
			continue
		}

		asset, err := b.resolveAsset(ctx, state, track, clip)
		if err != nil {
			return err
		}
		if !asset.HasVideo {
			return services.Wrap(services.ErrComposition, "composition", "build",
				fmt.Sprintf("clip %s expects video but source %s carries none", clip.ID, asset.URL), nil)
		}
		if !asset.CoversRange(clip.TimeRange) {
			b.logger.Warn("clip range extends past source end",
				logging.String(logging.FieldComponent, "composition"),
				logging.String("clip_id", clip.ID),
				logging.Float64("range_end", clip.TimeRange.End()),
				logging.Float64("asset_duration", asset.Duration),
			)
		}

		state.plan.Video = append(state.plan.Video, segmentFromClip(SegmentVideo, track, clip, asset, cursor))
		if !clip.IsMuted && !track.IsMuted && asset.HasAudio && clip.Kind == timeline.ClipVideo {
			state.plan.Audio = append(state.plan.Audio, segmentFromClip(SegmentAudio, track, clip, asset, cursor))
		}
		cursor += clip.TimeRange.Duration
	}
	return nil
}

// lowerAudioTrack concatenates the track's audio clips with its own cursor.
func (b *Builder) lowerAudioTrack(ctx context.Context, state *buildState, track *timeline.Track) error {
	cursor := 0.0
	for i := range track.Clips {
		clip := &track.Clips[i]
		if clip.Kind != timeline.ClipAudio {
			b.skipClip(state, track, clip, fmt.Sprintf("%s clips are not lowered on an audio track", clip.Kind))
			continue
		}
		if clip.IsMuted {
			b.skipClip(state, track, clip, "clip is muted")
			continue
		}
		if !clip.Source.Resolvable() {
			b.skipClip(state, track, clip, "clip has no resolvable source")
			continue
		}

		asset, err := b.resolveAsset(ctx, state, track, clip)
		if err != nil {
			return err
		}
		if !asset.HasAudio {
			return services.Wrap(services.ErrComposition, "composition", "build",
				fmt.Sprintf("clip %s expects audio but source %s carries none", clip.ID, asset.URL), nil)
		}

		state.plan.Audio = append(state.plan.Audio, segmentFromClip(SegmentAudio, track, clip, asset, cursor))
		cursor += clip.TimeRange.Duration
	}
	return nil
}

func (b *Builder) resolveAsset(ctx context.Context, state *buildState, track *timeline.Track, clip *timeline.Clip) (media.Asset, error) {
	ref := clip.Source.Ref()
	if asset, ok := state.assets[ref]; ok {
		return asset, nil
	}
	asset, err := b.loader.Load(ctx, ref)
	if err != nil {
		return media.Asset{}, services.Wrap(services.ErrComposition, "composition", "build",
			fmt.Sprintf("resolving source for clip %s on track %s", clip.ID, track.ID), err)
	}
	state.assets[ref] = asset
	return asset, nil
}

func (b *Builder) skipClip(state *buildState, track *timeline.Track, clip *timeline.Clip, reason string) {
	state.plan.Skipped = append(state.plan.Skipped, SkippedClip{
		TrackID: track.ID,
		ClipID:  clip.ID,
		Kind:    clip.Kind,
		Reason:  reason,
	})
	b.logger.Debug("clip skipped during lowering",
		logging.String(logging.FieldComponent, "composition"),
		logging.String("track_id", track.ID),
		logging.String("clip_id", clip.ID),
		logging.String("reason", reason),
	)
}

func (b *Builder) skipTrack(state *buildState, track *timeline.Track, reason string) {
	for i := range track.Clips {
		state.plan.Skipped = append(state.plan.Skipped, SkippedClip{
			TrackID: track.ID,
			ClipID:  track.Clips[i].ID,
			Kind:    track.Clips[i].Kind,
			Reason:  reason,
		})
	}
	b.logger.Debug("track skipped during lowering",
		logging.String(logging.FieldComponent, "composition"),
		logging.String("track_id", track.ID),
		logging.String("reason", reason),
	)
}

func segmentFromClip(kind SegmentKind, track *timeline.Track, clip *timeline.Clip, asset media.Asset, cursor float64) Segment {
	seg := Segment{
		Kind:        kind,
		TrackID:     track.ID,
		ClipID:      clip.ID,
		AssetID:     asset.ID,
		AssetPath:   asset.URL,
		SourceStart: clip.TimeRange.Start,
		Duration:    clip.TimeRange.Duration,
		Start:       cursor,
		Volume:      clip.Volume * track.Volume,
		Opacity:     clip.Opacity,
		Transform:   clip.Transform,
	}
	if len(clip.Effects) > 0 {
		seg.Effects = append([]string(nil), clip.Effects...)
	}
	if kind == SegmentAudio {
		seg.Opacity = 1
		seg.Transform = timeline.IdentityTransform()
	}
	return seg
}
