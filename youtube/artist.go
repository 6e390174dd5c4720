package youtube

import (
	"regexp"
	"strings"
)

// Title patterns tried in order. Japanese music channels follow a handful
// of naming conventions, the bracket styles being the most reliable.
var (
	cornerBracketsRe   = regexp.MustCompile(`【(.+?)】`)
	artistQuoteSongRe  = regexp.MustCompile(`^([^｢「]+)[｢「]`)
	artistDashSongRe   = regexp.MustCompile(`^(.+?)\s*[-−ー]\s*`)
	slashArtistColonRe = regexp.MustCompile(`/\s*(.+?)[:：]`)
	slashArtistEndRe   = regexp.MustCompile(`/\s*(.+?)$`)
	slashArtistNoiseRe = regexp.MustCompile(`(?i)\s*(MUSIC\s+VIDEO|MV|Official.*|[(（].*?[)）]).*$`)
	artistSongQuoteRe  = regexp.MustCompile(`^(.+?)\s+['"“”‘’]`)
	featSuffixRe       = regexp.MustCompile(`(?i)\s+feat\..*$`)

	japaneseRe     = regexp.MustCompile(`[ぁ-んァ-ヶー一-龯]`)
	romajiSuffixRe = regexp.MustCompile(`\s+[A-Za-z\s]+$`)
	romajiPrefixRe = regexp.MustCompile(`^[A-Za-z\s]+\s+`)
)

// bracketNoiseWords disqualify a 【...】 capture: TV show and event titles
// use the same brackets as artist credits. "Official" is deliberately not
// listed because it appears in band names like Official髭男dism.
var bracketNoiseWords = []string{"第", "回", "歌合戦", "NHK", "紅白", "MV", "MUSIC", "オリジナル楽曲", "歌唱曲"}

// ExtractArtistFromTitle pulls an artist name out of a video title using a
// cascade of heuristic patterns. It returns "" when no pattern applies.
func ExtractArtistFromTitle(title string) string {
	if title == "" {
		return ""
	}

	// 【artist】
	if m := cornerBracketsRe.FindStringSubmatch(title); m != nil {
		artist := strings.TrimSpace(m[1])
		if !containsAny(artist, bracketNoiseWords) {
			return artist
		}
	}

	// artist「song」
	if m := artistQuoteSongRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}

	// artist - song
	if m := artistDashSongRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}

	// song / artist : extra
	if m := slashArtistColonRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}

	// song / artist
	if m := slashArtistEndRe.FindStringSubmatch(title); m != nil {
		artist := strings.TrimSpace(m[1])
		artist = strings.TrimSpace(slashArtistNoiseRe.ReplaceAllString(artist, ""))
		return artist
	}

	// artist 'song'
	if m := artistSongQuoteRe.FindStringSubmatch(title); m != nil {
		artist := strings.TrimSpace(m[1])
		return featSuffixRe.ReplaceAllString(artist, "")
	}

	return ""
}

// CleanJapaneseArtistName strips a space-separated romanized duplicate from
// a Japanese artist credit, e.g. "米津玄師 Kenshi Yonezu" becomes "米津玄師".
// Names without Japanese characters pass through unchanged, as do mixed
// names with no space boundary like Official髭男dism.
func CleanJapaneseArtistName(name string) string {
	if name == "" {
		return ""
	}
	if !japaneseRe.MatchString(name) {
		return name
	}
	cleaned := strings.TrimSpace(romajiSuffixRe.ReplaceAllString(name, ""))
	cleaned = strings.TrimSpace(romajiPrefixRe.ReplaceAllString(cleaned, ""))
	if cleaned == "" {
		return name
	}
	return cleaned
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
