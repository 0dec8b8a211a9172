package planner

import "testing"

func TestComputeChunkSize(t *testing.T) {
	cases := []struct {
		total, maxTokens, want int
	}{
		{120, 8192, 70},  // 8192/100 = 81 -> 80 - 10
		{120, 4096, 30},  // 4096/100 = 40 -> 40 - 10
		{120, 1000, 1},   // 1000/100 = 10 -> 10 - 10 = 0, clamps to 1
		{120, 0, 1},      // degenerate budget clamps to 1
		{5, 8192, 5},     // never exceeds total chapters
		{120, 100000, 120},
	}
	for _, c := range cases {
		if got := ComputeChunkSize(c.total, c.maxTokens); got != c.want {
			t.Errorf("ComputeChunkSize(%d, %d) = %d, want %d", c.total, c.maxTokens, got, c.want)
		}
	}
}

func TestNextBatch(t *testing.T) {
	ranges := []VolumeRange{
		{Volume: 1, StartChapter: 1, EndChapter: 10},
		{Volume: 2, StartChapter: 11, EndChapter: 25},
	}

	t.Run("bounded by volume end", func(t *testing.T) {
		batch, ok, err := NextBatch(5, ranges, 30, 100)
		if err != nil || !ok {
			t.Fatalf("got (%v, %v)", ok, err)
		}
		if batch.StartChapter != 6 || batch.EndChapter != 10 || batch.Volume != 1 {
			t.Errorf("unexpected batch: %+v", batch)
		}
	})

	t.Run("bounded by chunk size", func(t *testing.T) {
		batch, ok, _ := NextBatch(10, ranges, 5, 100)
		if !ok || batch.StartChapter != 11 || batch.EndChapter != 15 {
			t.Errorf("unexpected batch: %+v", batch)
		}
	})

	t.Run("bounded by task budget", func(t *testing.T) {
		batch, ok, _ := NextBatch(10, ranges, 30, 3)
		if !ok || batch.EndChapter != 13 {
			t.Errorf("unexpected batch: %+v", batch)
		}
	})

	t.Run("exhausted budget", func(t *testing.T) {
		_, ok, err := NextBatch(10, ranges, 30, 0)
		if ok || err != nil {
			t.Errorf("expected (ok=false, err=nil), got (%v, %v)", ok, err)
		}
	})

	t.Run("gap propagates error", func(t *testing.T) {
		gapped := []VolumeRange{
			{Volume: 1, StartChapter: 1, EndChapter: 10},
			{Volume: 2, StartChapter: 15, EndChapter: 25},
		}
		_, _, err := NextBatch(10, gapped, 30, 100)
		if err == nil {
			t.Error("expected gap error")
		}
	})
}

func TestComputeProgress(t *testing.T) {
	ranges := []VolumeRange{
		{Volume: 1, StartChapter: 1, EndChapter: 10},
		{Volume: 2, StartChapter: 11, EndChapter: 25},
	}

	t.Run("nothing generated", func(t *testing.T) {
		p, err := ComputeProgress(nil, ranges)
		if err != nil {
			t.Fatal(err)
		}
		if p.CurrentVolume != 1 || p.LastGeneratedChapter != 0 {
			t.Errorf("unexpected progress: %+v", p)
		}
	})

	t.Run("mid volume", func(t *testing.T) {
		p, err := ComputeProgress([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, ranges)
		if err != nil {
			t.Fatal(err)
		}
		if p.CurrentVolume != 2 || p.IsAtVolumeEnd || p.VolumeFullyGenerated {
			t.Errorf("unexpected progress: %+v", p)
		}
	})

	t.Run("volume complete", func(t *testing.T) {
		completed := make([]int, 0, 10)
		for c := 1; c <= 10; c++ {
			completed = append(completed, c)
		}
		p, err := ComputeProgress(completed, ranges)
		if err != nil {
			t.Fatal(err)
		}
		if !p.IsAtVolumeEnd || !p.VolumeFullyGenerated {
			t.Errorf("unexpected progress: %+v", p)
		}
	})

	t.Run("interior gap blocks completion", func(t *testing.T) {
		p, err := ComputeProgress([]int{1, 2, 3, 5, 6, 7, 8, 9, 10}, ranges)
		if err != nil {
			t.Fatal(err)
		}
		if p.VolumeFullyGenerated {
			t.Error("interior gap must count as incomplete")
		}
		if !p.IsAtVolumeEnd {
			t.Error("last generated chapter still closes the volume")
		}
	})
}
