package media

import "testing"

func TestImportable(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/watch/clip.mp4", true},
		{"/watch/song.wav", true},
		{"/watch/nested/take2.mov", true},
		{"/watch/.clip.mp4", false}, // hidden: in-progress copy
		{"/watch/.DS_Store", false},
		{"/watch/notes.txt", false},
		{"/watch/archive.zip", false},
	}
	for _, tc := range cases {
		if got := importable(tc.path); got != tc.want {
			t.Errorf("importable(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
