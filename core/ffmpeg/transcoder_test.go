package ffmpeg

import (
	"reflect"
	"testing"
)

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		0:      "0.000",
		1.5:    "1.500",
		90.25:  "90.250",
		0.1234: "0.123",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Errorf("formatSeconds(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestCodecArgsByContainer(t *testing.T) {
	tr := New("ffmpeg", 0, "192k")

	if got := tr.codecArgs("/tmp/out.wav"); !reflect.DeepEqual(got, []string{"-c:a", "pcm_s16le"}) {
		t.Fatalf("wav codec args = %v", got)
	}
	if got := tr.codecArgs("/tmp/out.mp3"); !reflect.DeepEqual(got, []string{"-c:a", "libmp3lame", "-b:a", "192k"}) {
		t.Fatalf("mp3 codec args = %v", got)
	}
}
