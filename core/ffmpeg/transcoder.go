package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"wavecut/logger"
)

// Transcoder drives the external ffmpeg/ffprobe binaries. It satisfies both
// the executor's Transcoder interface and the upload path's duration prober.
type Transcoder struct {
	ffmpegPath string
	timeout    time.Duration // per invocation
	bitrate    string        // applied when a step re-encodes to mp3
}

// New creates a Transcoder. ffmpegPath may be a bare binary name resolved via
// PATH; the ffprobe path is derived from it the same way.
func New(ffmpegPath string, timeout time.Duration, bitrate string) *Transcoder {
	return &Transcoder{ffmpegPath: ffmpegPath, timeout: timeout, bitrate: bitrate}
}

// Extract cuts [start, start+duration) out of src into dst with stream copy,
// avoiding a decode/encode cycle for the cut itself.
func (t *Transcoder) Extract(ctx context.Context, src string, start, duration float64, dst string) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", src,
		"-c", "copy",
		dst,
	}
	return t.run(ctx, args)
}

// Concat joins the parts in order with the concat demuxer and stream copy, so
// the output duration is exactly the sum of the inputs. The list file lives
// next to dst and is removed afterwards.
func (t *Transcoder) Concat(ctx context.Context, parts []string, dst string) error {
	listFile := filepath.Join(filepath.Dir(dst), "concat.txt")
	var list strings.Builder
	for _, p := range parts {
		// Single quotes in paths must be escaped for the concat demuxer.
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(p, "'", `'\''`))
	}
	if err := os.WriteFile(listFile, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listFile)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		dst,
	}
	return t.run(ctx, args)
}

// Crossfade blends the tail of a into the head of b over duration seconds
// with a linear (triangular) curve. The filter decodes both inputs, so the
// result is re-encoded to the codec implied by dst's extension.
func (t *Transcoder) Crossfade(ctx context.Context, a, b string, duration float64, dst string) error {
	args := []string{
		"-y",
		"-i", a,
		"-i", b,
		"-filter_complex", fmt.Sprintf("acrossfade=d=%s:c1=tri:c2=tri", formatSeconds(duration)),
	}
	args = append(args, t.codecArgs(dst)...)
	args = append(args, dst)
	return t.run(ctx, args)
}

// codecArgs picks encoder settings by output container.
func (t *Transcoder) codecArgs(dst string) []string {
	switch filepath.Ext(dst) {
	case ".wav":
		return []string{"-c:a", "pcm_s16le"}
	default:
		return []string{"-c:a", "libmp3lame", "-b:a", t.bitrate}
	}
}

// run executes ffmpeg with the given args under the configured timeout,
// capturing stderr into the returned error.
func (t *Transcoder) run(ctx context.Context, args []string) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("executing ffmpeg", logger.String("args", strings.Join(args, " ")))

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ffmpeg timed out after %s", t.timeout)
		}
		return fmt.Errorf("ffmpeg execution failed: %w\nFFmpeg Error: %s", err, stderr.String())
	}
	return nil
}

// formatSeconds renders a duration in seconds with millisecond precision,
// which is what ffmpeg's -ss/-t and acrossfade accept.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
