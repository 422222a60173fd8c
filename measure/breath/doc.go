// Package breath segments a respiratory flow signal into breath cycles.
//
// The pipeline runs in four stages:
//
//   - [Preprocess] replaces missing samples with zero, negates the flow and
//     smooths it with a Gaussian kernel.
//   - [DetectCycles], [ComputeFeatures] and [CleanCycles] find baseline
//     crossings, pair them into candidate cycles and reject low-amplitude
//     outliers.
//   - [NearestZero] snaps every cycle boundary to the closest sign change of
//     the raw, unsmoothed signal.
//   - [BuildTable] turns the refined cycles into an ordered, contiguous
//     [Table] of breaths.
//
// [Segmenter] wires the stages together for one recording:
//
//	seg := breath.NewSegmenter(breath.Config{SampleRate: 200})
//	table, err := seg.Segment(flow)
//
// Malformed cycles are skipped and reported through the monitoring log hook.
// Only configuration or smoothing failures abort a recording.
package breath
