// Package planner maps chapter numbers to volumes and sizes the chunks of
// chapter-blueprint generation. It is pure text-and-arithmetic: callers feed
// it the volume outline and the set of completed chapters.
package planner

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// VolumeRange is one volume's contiguous chapter span.
type VolumeRange struct {
	Volume       int
	StartChapter int
	EndChapter   int
	Title        string
}

// volumeHeaderPattern matches volume outline block headers such as
// `#=== 第一卷　风起　第1章 至 第10章 ===` or `#=== 第2卷 第11章 至 第20章 ===`.
var volumeHeaderPattern = regexp.MustCompile(
	`#===\s*第([0-9一二三四五六七八九十百零两]+)卷(.*?)第(\d+)章\s*至\s*第(\d+)章\s*===`)

// ParseVolumeRanges extracts volume ranges from the outline document.
// Chinese-numeral and Arabic volume numbers are both accepted; a header with
// an unparseable volume token is skipped with a warning, never fatal.
// Results are sorted by volume number ascending.
func ParseVolumeRanges(outlineText string, logger *slog.Logger) []VolumeRange {
	if logger == nil {
		logger = slog.Default()
	}

	var ranges []VolumeRange
	for _, m := range volumeHeaderPattern.FindAllStringSubmatch(outlineText, -1) {
		volume, err := parseVolumeNumber(m[1])
		if err != nil {
			logger.Warn("skipping volume header with unparseable number",
				"token", m[1], "error", err)
			continue
		}
		start, _ := strconv.Atoi(m[3])
		end, _ := strconv.Atoi(m[4])
		if start <= 0 || end < start {
			logger.Warn("skipping volume header with invalid chapter span",
				"volume", volume, "start", start, "end", end)
			continue
		}
		ranges = append(ranges, VolumeRange{
			Volume:       volume,
			StartChapter: start,
			EndChapter:   end,
			Title:        strings.Trim(strings.TrimSpace(m[2]), "　"),
		})
	}

	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].Volume < ranges[j].Volume
	})
	return ranges
}

// ErrChapterGap reports a chapter that falls between two defined volume
// ranges. This is a project configuration problem the pipeline cannot guess
// past, so it aborts the run instead of defaulting to a wrong volume.
type ErrChapterGap struct {
	Chapter int
}

func (e *ErrChapterGap) Error() string {
	return fmt.Sprintf("chapter %d is not covered by any volume range; fix the volume outline", e.Chapter)
}

// FindVolumeForChapter locates the volume containing a chapter.
//
//   - exact containment wins and also reports whether the chapter closes
//     its volume
//   - a chapter beyond every defined range belongs to the assumed next,
//     not-yet-outlined volume
//   - a chapter in a gap between defined ranges returns *ErrChapterGap
//   - with no ranges at all, everything belongs to volume 1
func FindVolumeForChapter(chapter int, ranges []VolumeRange) (volume int, isLastOfVolume bool, err error) {
	if len(ranges) == 0 {
		return 1, false, nil
	}

	maxEnd := 0
	maxVolume := 0
	for _, r := range ranges {
		if chapter >= r.StartChapter && chapter <= r.EndChapter {
			return r.Volume, chapter == r.EndChapter, nil
		}
		if r.EndChapter > maxEnd {
			maxEnd = r.EndChapter
		}
		if r.Volume > maxVolume {
			maxVolume = r.Volume
		}
	}

	if chapter > maxEnd {
		return maxVolume + 1, false, nil
	}
	return 0, false, &ErrChapterGap{Chapter: chapter}
}

// RangeForVolume returns the range of a volume, if defined.
func RangeForVolume(volume int, ranges []VolumeRange) (VolumeRange, bool) {
	for _, r := range ranges {
		if r.Volume == volume {
			return r, true
		}
	}
	return VolumeRange{}, false
}

// CheckContiguity logs a warning for every seam where one volume's end + 1 is
// not the next volume's start. Violations are data-quality warnings, not
// errors; FindVolumeForChapter is what enforces consequences.
func CheckContiguity(ranges []VolumeRange, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1], ranges[i]
		if prev.EndChapter+1 != cur.StartChapter {
			logger.Warn("volume ranges are not contiguous",
				"volume", prev.Volume, "end", prev.EndChapter,
				"next_volume", cur.Volume, "next_start", cur.StartChapter)
		}
	}
}

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '两': 2, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseVolumeNumber accepts Arabic numerals or Chinese numerals up to 999.
func parseVolumeNumber(token string) (int, error) {
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("volume number must be positive: %d", n)
		}
		return n, nil
	}

	total, current := 0, 0
	for _, c := range token {
		switch c {
		case '百':
			if current == 0 {
				current = 1
			}
			total += current * 100
			current = 0
		case '十':
			if current == 0 {
				current = 1
			}
			total += current * 10
			current = 0
		default:
			d, ok := chineseDigits[c]
			if !ok {
				return 0, fmt.Errorf("unrecognized numeral %q", string(c))
			}
			current = d
		}
	}
	total += current
	if total <= 0 {
		return 0, fmt.Errorf("numeral %q parsed to %d", token, total)
	}
	return total, nil
}

// RenderVolumeHeader produces the canonical outline header for a volume.
func RenderVolumeHeader(r VolumeRange) string {
	title := ""
	if r.Title != "" {
		title = "　" + r.Title
	}
	return fmt.Sprintf("#=== 第%d卷%s　第%d章 至 第%d章 ===", r.Volume, title, r.StartChapter, r.EndChapter)
}
