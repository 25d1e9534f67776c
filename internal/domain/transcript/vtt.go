package transcript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pramudya/trendcut/internal/types"
)

var (
	reCueTime = regexp.MustCompile(`(\d{1,2}:)?\d{2}:\d{2}[\.,]\d{3}\s*-->\s*((\d{1,2}:)?\d{2}:\d{2}[\.,]\d{3})`)
	reTag     = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT reads WebVTT content and returns raw transcript triples in cue
// order. The parser is deliberately tolerant: header lines, NOTE blocks,
// cue identifiers and inline timing tags are all skipped. Output still
// needs Normalize before scoring.
func ParseVTT(r io.Reader) ([]types.TranscriptUnit, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		out     []types.TranscriptUnit
		start   float64
		end     float64
		inCue   bool
		textBuf []string
	)
	flush := func() {
		if inCue {
			text := strings.TrimSpace(strings.Join(textBuf, " "))
			if text != "" {
				out = append(out, types.TranscriptUnit{Start: start, End: end, Text: text})
			}
		}
		inCue = false
		textBuf = textBuf[:0]
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			flush()
		case strings.Contains(line, "-->"):
			flush()
			m := reCueTime.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			fields := strings.SplitN(line, "-->", 2)
			start = timestampSeconds(strings.TrimSpace(fields[0]))
			end = timestampSeconds(strings.Fields(strings.TrimSpace(fields[1]))[0])
			inCue = true
		case strings.HasPrefix(line, "WEBVTT"), strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "Kind:"), strings.HasPrefix(line, "Language:"):
			// header noise
		default:
			if inCue {
				textBuf = append(textBuf, reTag.ReplaceAllString(line, ""))
			}
		}
	}
	flush()
	return out, sc.Err()
}

// timestampSeconds parses "HH:MM:SS.mmm" or "MM:SS.mmm" (comma decimals
// accepted) into seconds. Malformed input maps to 0 so a single broken cue
// cannot abort subtitle ingestion.
func timestampSeconds(ts string) float64 {
	ts = strings.ReplaceAll(ts, ",", ".")
	parts := strings.Split(ts, ":")
	var h, m int
	var s float64
	var err error
	switch len(parts) {
	case 3:
		h, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0
		}
		m, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0
		}
		s, err = strconv.ParseFloat(parts[2], 64)
	case 2:
		m, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0
		}
		s, err = strconv.ParseFloat(parts[1], 64)
	default:
		return 0
	}
	if err != nil {
		return 0
	}
	return float64(h)*3600 + float64(m)*60 + s
}
