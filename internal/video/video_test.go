package video

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"testing"
)

// With fakeFFmpegEnv set the test binary stands in for ffmpeg: it logs a
// line and fails without reading its input.
const fakeFFmpegEnv = "PROMO2VIDEO_FAKE_FFMPEG"

func TestMain(m *testing.M) {
	if os.Getenv(fakeFFmpegEnv) == "1" {
		fmt.Fprintln(os.Stderr, "Unknown encoder 'nope'")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestVolumeExpression(t *testing.T) {
	expr := VolumeExpression([]VolumePoint{{0, 0.6}, {40, 0.6}, {46, 0.9}}, 0)

	if strings.Count(expr, "(") != strings.Count(expr, ")") {
		t.Fatalf("unbalanced parentheses: %s", expr)
	}
	for _, want := range []string{
		"if(lt(t,0.000000),0.600000,",
		"if(lt(t,46.000000),0.600000+(t-40.000000)/6.000000*(0.300000),",
		"0.900000)",
	} {
		if !strings.Contains(expr, want) {
			t.Errorf("expression %q should contain %q", expr, want)
		}
	}
}

func TestVolumeExpressionEdgeCases(t *testing.T) {
	if got := VolumeExpression(nil, 0); got != "" {
		t.Errorf("no points: %q", got)
	}
	if got := VolumeExpression([]VolumePoint{{3, 0.25}}, 0); got != "0.250000" {
		t.Errorf("single point: %q", got)
	}
	got := VolumeExpression([]VolumePoint{{0, 1}, {0, 0.5}, {10, 0}}, 2)
	if !strings.Contains(got, "(t+2.000000)") {
		t.Errorf("offset not applied: %q", got)
	}
	if strings.Count(got, "(") != strings.Count(got, ")") {
		t.Errorf("unbalanced parentheses: %s", got)
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	e := &FFmpegEncoder{}
	args := strings.Join(e.buildFFmpegArgs(Options{
		Width: 1080, Height: 1920, FPS: 30, Output: "out.mp4", Codec: "libx264", Quality: 23,
		Audio: &AudioTrack{Path: "music.mp3", Start: 1, Duration: 47, Volume: "0.5"},
	}), " ")

	for _, want := range []string{
		"-f rawvideo -pixel_format rgba -video_size 1080x1920 -framerate 30 -i -",
		"-i music.mp3",
		"[1:a]atrim=start=1.000000:end=48.000000,asetpts=PTS-STARTPTS,volume='0.5':eval=frame[aout]",
		"-map 0:v -map [aout]",
		"-c:v libx264 -crf 23 -preset medium",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q should contain %q", args, want)
		}
	}
	if !strings.HasSuffix(args, "out.mp4") {
		t.Errorf("output should come last: %q", args)
	}
}

func TestBuildFFmpegArgsHardware(t *testing.T) {
	e := &FFmpegEncoder{}
	tests := []struct {
		codec string
		want  string
	}{
		{"h264_videotoolbox", "-b:v 7500k"},
		{"h264_nvenc", "-cq 75"},
	}
	for _, tt := range tests {
		args := strings.Join(e.buildFFmpegArgs(Options{Width: 2, Height: 2, FPS: 30, Output: "o.mp4", Codec: tt.codec, Quality: 75}), " ")
		if !strings.Contains(args, tt.want) {
			t.Errorf("%s: args %q should contain %q", tt.codec, args, tt.want)
		}
		if strings.Contains(args, "[aout]") {
			t.Errorf("%s: no audio requested but got %q", tt.codec, args)
		}
	}
}

func TestStreamReportsEncoderFailure(t *testing.T) {
	t.Setenv(fakeFFmpegEnv, "1")
	enc := &FFmpegEncoder{Binary: os.Args[0]}
	stream, err := enc.Open(context.Background(), Options{Width: 64, Height: 64, FPS: 30, Output: "out.mp4"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Writes race the exiting process; they may fail at any point, and the
	// log must be readable while stderr is still being copied.
	frame := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := 0; i < 50; i++ {
		if err := stream.WriteFrame(frame); err != nil {
			if !strings.Contains(err.Error(), "write raw error") {
				t.Errorf("WriteFrame: %v", err)
			}
			break
		}
	}

	err = stream.Close()
	if err == nil || !strings.Contains(err.Error(), "Unknown encoder 'nope'") {
		t.Errorf("Close = %v, want the ffmpeg log in the error", err)
	}
}

func TestLogBufferConcurrentUse(t *testing.T) {
	var b logBuffer
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				fmt.Fprintf(&b, "line %d\n", j)
				_ = b.String()
			}
		}()
	}
	wg.Wait()
	if got := strings.Count(b.String(), "\n"); got != 400 {
		t.Errorf("got %d lines, want 400", got)
	}
}
