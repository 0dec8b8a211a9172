package planner

import (
	"errors"
	"testing"
)

const sampleOutline = `#=== 第一卷　风起　第1章 至 第10章 ===
（本卷主线……）

#=== 第2卷　云涌　第11章 至 第25章 ===
（本卷主线……）

#=== 第三卷　第26章 至 第40章 ===
（无卷名也合法）`

func TestParseVolumeRanges(t *testing.T) {
	ranges := ParseVolumeRanges(sampleOutline, nil)
	if len(ranges) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(ranges))
	}

	if ranges[0].Volume != 1 || ranges[0].StartChapter != 1 || ranges[0].EndChapter != 10 {
		t.Errorf("unexpected first range: %+v", ranges[0])
	}
	if ranges[0].Title != "风起" {
		t.Errorf("expected title 风起, got %q", ranges[0].Title)
	}
	if ranges[2].Volume != 3 || ranges[2].Title != "" {
		t.Errorf("unexpected third range: %+v", ranges[2])
	}
}

func TestParseVolumeRanges_SkipsBadHeaders(t *testing.T) {
	text := `#=== 第甲卷　坏编号　第1章 至 第10章 ===
#=== 第2卷　倒置范围　第20章 至 第5章 ===
#=== 第3卷　好的　第1章 至 第10章 ===`

	ranges := ParseVolumeRanges(text, nil)
	if len(ranges) != 1 || ranges[0].Volume != 3 {
		t.Fatalf("expected only volume 3 to survive, got %+v", ranges)
	}
}

func TestParseVolumeNumber(t *testing.T) {
	cases := map[string]int{
		"1": 1, "12": 12, "一": 1, "两": 2, "十": 10,
		"十五": 15, "二十一": 21, "一百零三": 103, "三百": 300,
	}
	for token, want := range cases {
		got, err := parseVolumeNumber(token)
		if err != nil || got != want {
			t.Errorf("parseVolumeNumber(%q) = (%d, %v), want %d", token, got, err, want)
		}
	}

	for _, bad := range []string{"", "甲", "0", "-3"} {
		if _, err := parseVolumeNumber(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFindVolumeForChapter(t *testing.T) {
	ranges := ParseVolumeRanges(sampleOutline, nil)

	t.Run("containment", func(t *testing.T) {
		volume, last, err := FindVolumeForChapter(11, ranges)
		if err != nil || volume != 2 || last {
			t.Errorf("got (%d, %v, %v)", volume, last, err)
		}
	})

	t.Run("closing chapter of volume", func(t *testing.T) {
		volume, last, err := FindVolumeForChapter(25, ranges)
		if err != nil || volume != 2 || !last {
			t.Errorf("got (%d, %v, %v)", volume, last, err)
		}
	})

	t.Run("beyond all ranges is the next volume", func(t *testing.T) {
		volume, _, err := FindVolumeForChapter(41, ranges)
		if err != nil || volume != 4 {
			t.Errorf("got (%d, %v)", volume, err)
		}
	})

	t.Run("gap is an error", func(t *testing.T) {
		gapped := []VolumeRange{
			{Volume: 1, StartChapter: 1, EndChapter: 10},
			{Volume: 2, StartChapter: 15, EndChapter: 25},
		}
		_, _, err := FindVolumeForChapter(12, gapped)
		var gapErr *ErrChapterGap
		if !errors.As(err, &gapErr) {
			t.Fatalf("expected *ErrChapterGap, got %v", err)
		}
		if gapErr.Chapter != 12 {
			t.Errorf("expected chapter 12 in error, got %d", gapErr.Chapter)
		}
	})

	t.Run("no ranges defaults to volume 1", func(t *testing.T) {
		volume, _, err := FindVolumeForChapter(7, nil)
		if err != nil || volume != 1 {
			t.Errorf("got (%d, %v)", volume, err)
		}
	})
}

func TestRenderVolumeHeader_RoundTrip(t *testing.T) {
	r := VolumeRange{Volume: 2, StartChapter: 11, EndChapter: 25, Title: "云涌"}

	parsed := ParseVolumeRanges(RenderVolumeHeader(r), nil)
	if len(parsed) != 1 {
		t.Fatalf("rendered header does not re-parse: %q", RenderVolumeHeader(r))
	}
	if parsed[0] != r {
		t.Errorf("round trip changed range: %+v", parsed[0])
	}
}
