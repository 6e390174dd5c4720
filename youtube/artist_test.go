package youtube

import "testing"

func TestExtractArtistFromTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"corner brackets", "【imase】NIGHT DANCER（MV）", "imase"},
		{"brackets with noise word fall through", "【第75回NHK紅白歌合戦 歌唱曲】踊り子 / Vaundy：MUSIC VIDEO", "Vaundy"},
		{"official in band name kept", "【Official髭男dism】Pretender", "Official髭男dism"},
		{"kagi brackets", "YOASOBI「アイドル」", "YOASOBI"},
		{"hyphen separator", "なとり - Overdose", "なとり"},
		{"hyphen with romanized duplicate", "米津玄師  Kenshi Yonezu - IRIS OUT", "米津玄師  Kenshi Yonezu"},
		{"hyphen with feat suffix", "DECO*27 - モニタリング feat. 初音ミク", "DECO*27"},
		{"slash then colon", "モエチャッカファイア / 弌誠：MUSIC VIDEO", "弌誠"},
		{"slash to end with mv noise", "踊 / Ado MUSIC VIDEO", "Ado"},
		{"quoted song title", "Chinozo 'グッバイ宣言' feat.FloweR", "Chinozo"},
		{"no pattern", "NIGHT DANCER", ""},
		{"empty title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractArtistFromTitle(tt.title); got != tt.want {
				t.Errorf("ExtractArtistFromTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestCleanJapaneseArtistName(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		want   string
	}{
		{"romanized suffix", "米津玄師 Kenshi Yonezu", "米津玄師"},
		{"romanized prefix", "Kenshi Yonezu 米津玄師", "米津玄師"},
		{"pure japanese unchanged", "あいみょん", "あいみょん"},
		{"pure english unchanged", "Creepy Nuts", "Creepy Nuts"},
		{"mixed without space kept", "Official髭男dism", "Official髭男dism"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJapaneseArtistName(tt.artist); got != tt.want {
				t.Errorf("CleanJapaneseArtistName(%q) = %q, want %q", tt.artist, got, tt.want)
			}
		})
	}
}
