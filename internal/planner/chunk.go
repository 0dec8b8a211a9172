package planner

import "fmt"

// tokensPerEntry is the empirical density estimate for one blueprint entry.
const tokensPerEntry = 100

// ComputeChunkSize bounds how many chapter blueprints fit in one model call.
// The raw estimate maxOutputTokens/100 is rounded down to a multiple of ten
// and backed off by ten more, then clamped to [1, totalChapters]: the density
// estimate is rough, so precision beyond tens is noise.
func ComputeChunkSize(totalChapters, maxOutputTokens int) int {
	chunk := maxOutputTokens/tokensPerEntry/10*10 - 10
	if chunk < 1 {
		chunk = 1
	}
	if totalChapters >= 1 && chunk > totalChapters {
		chunk = totalChapters
	}
	return chunk
}

// Batch is the next contiguous span of chapters to generate.
type Batch struct {
	StartChapter int
	EndChapter   int
	Volume       int
}

// NextBatch computes the next generation batch after lastGenerated. The batch
// never crosses a volume boundary and never exceeds chunkSize or the task's
// remaining chapter budget. ok is false when nothing remains to generate in
// the current volume (exhausted budget or span).
func NextBatch(lastGenerated int, ranges []VolumeRange, chunkSize, remainingInTask int) (Batch, bool, error) {
	next := lastGenerated + 1
	volume, _, err := FindVolumeForChapter(next, ranges)
	if err != nil {
		return Batch{}, false, fmt.Errorf("cannot place chapter %d in a volume: %w", next, err)
	}

	remainingInVolume := remainingInTask
	if r, ok := RangeForVolume(volume, ranges); ok {
		remainingInVolume = r.EndChapter - next + 1
	}

	size := chunkSize
	if remainingInVolume < size {
		size = remainingInVolume
	}
	if remainingInTask < size {
		size = remainingInTask
	}
	if size <= 0 {
		return Batch{}, false, nil
	}

	return Batch{
		StartChapter: next,
		EndChapter:   next + size - 1,
		Volume:       volume,
	}, true, nil
}

// Progress summarizes how far generation has advanced relative to the
// volume outline.
type Progress struct {
	CurrentVolume        int
	LastGeneratedChapter int
	VolumeStart          int
	VolumeEnd            int
	IsAtVolumeEnd        bool
	VolumeFullyGenerated bool
}

// ComputeProgress derives the current position from the set of completed
// chapter numbers and the parsed volume ranges. "Fully generated" requires
// every chapter of the current volume's span to be present: interior gaps
// count as incomplete even when later chapters exist.
func ComputeProgress(completed []int, ranges []VolumeRange) (Progress, error) {
	last := 0
	have := make(map[int]bool, len(completed))
	for _, c := range completed {
		have[c] = true
		if c > last {
			last = c
		}
	}

	p := Progress{LastGeneratedChapter: last}
	if last == 0 {
		volume, _, err := FindVolumeForChapter(1, ranges)
		if err != nil {
			return Progress{}, err
		}
		p.CurrentVolume = volume
		if r, ok := RangeForVolume(volume, ranges); ok {
			p.VolumeStart, p.VolumeEnd = r.StartChapter, r.EndChapter
		}
		return p, nil
	}

	volume, atEnd, err := FindVolumeForChapter(last, ranges)
	if err != nil {
		return Progress{}, err
	}
	p.CurrentVolume = volume
	p.IsAtVolumeEnd = atEnd

	if r, ok := RangeForVolume(volume, ranges); ok {
		p.VolumeStart, p.VolumeEnd = r.StartChapter, r.EndChapter
		p.VolumeFullyGenerated = true
		for c := r.StartChapter; c <= r.EndChapter; c++ {
			if !have[c] {
				p.VolumeFullyGenerated = false
				break
			}
		}
	}
	return p, nil
}
