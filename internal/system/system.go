package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/go-mp3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit; ffmpeg frame grabs and
// PDF pages each hold descriptors while workers run.
func InitResourceLimits(logger *log.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("could not read open file limit", "err", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		logger.Warn("could not raise open file limit", "err", err)
	} else {
		logger.Debug("open file limit raised", "limit", rLimit.Cur)
	}
}

// RecommendedWorkers sizes the render pool: one worker per logical CPU, but
// no more than a quarter of available memory divided by frameBytes (each
// worker holds its frame plus scratch layers).
func RecommendedWorkers(frameBytes int64) int {
	workers, err := cpu.Counts(true)
	if err != nil || workers <= 0 {
		workers = runtime.NumCPU()
	}
	if frameBytes > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
			byMem := int(vm.Available / 4 / uint64(frameBytes) / 4)
			if byMem < workers {
				workers = byMem
			}
		}
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// AudioDuration returns the length of a soundtrack in seconds. MP3 files are
// measured by decoding their frame index; other formats go through ffprobe.
func AudioDuration(ctx context.Context, path string) (float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if d, err := mp3Duration(path); err == nil {
			return d, nil
		}
	}
	return probeDuration(ctx, path)
}

func mp3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}
	// Длина в байтах 16-битного стерео PCM: 4 байта на сэмпл
	samples := d.Length() / 4
	if samples <= 0 || d.SampleRate() <= 0 {
		return 0, fmt.Errorf("mp3 %s: unknown length", path)
	}
	return float64(samples) / float64(d.SampleRate()), nil
}

func probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// GetBestH264Encoder picks the first hardware encoder ffmpeg reports.
func GetBestH264Encoder(ctx context.Context) string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}
