package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"repurpose-backend/internal/apperror"
)

const (
	defaultInfoTimeout     = 30 * time.Second
	defaultDownloadTimeout = 5 * time.Minute
)

// Runner executes a command and returns stdout. On failure the error includes stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return stdout.Bytes(), fmt.Errorf("yt-dlp failed: %w", err)
		}
		return stdout.Bytes(), fmt.Errorf("yt-dlp failed: %w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}

type VideoInfo struct {
	Title    string
	Duration int
	ID       string
}

type Client struct {
	binary          string
	runner          Runner
	infoTimeout     time.Duration
	downloadTimeout time.Duration
}

type Option func(*Client)

func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

func WithTimeouts(info, download time.Duration) Option {
	return func(c *Client) {
		c.infoTimeout = info
		c.downloadTimeout = download
	}
}

func NewClient(binary string, opts ...Option) *Client {
	if binary == "" {
		binary = "yt-dlp"
	}
	c := &Client{
		binary:          binary,
		runner:          execRunner{},
		infoTimeout:     defaultInfoTimeout,
		downloadTimeout: defaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetVideoInfo fetches title, duration and source id without downloading media.
func (c *Client) GetVideoInfo(ctx context.Context, url string) (*VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.infoTimeout)
	defer cancel()

	out, err := c.runner.Run(ctx, c.binary,
		"--print", "%(title)s|||%(duration)s|||%(id)s",
		"--no-download",
		url,
	)
	if err != nil {
		return nil, classify(err, "Failed to fetch video information")
	}

	parts := strings.Split(strings.TrimSpace(string(out)), "|||")
	if len(parts) != 3 {
		return nil, apperror.MediaSource("Failed to fetch video information",
			fmt.Errorf("unexpected yt-dlp output %q", strings.TrimSpace(string(out))))
	}

	duration, _ := strconv.ParseFloat(parts[1], 64)
	return &VideoInfo{
		Title:    parts[0],
		Duration: int(duration),
		ID:       parts[2],
	}, nil
}

// DownloadAudio extracts the best audio track as mp3 into dest. The caller
// owns dest and must remove it.
func (c *Client) DownloadAudio(ctx context.Context, url, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	_, err := c.runner.Run(ctx, c.binary,
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", dest,
		url,
	)
	if err != nil {
		return classify(err, "Failed to download audio from YouTube")
	}

	if _, err := os.Stat(dest); err != nil {
		return apperror.MediaSource("Failed to download audio from YouTube",
			fmt.Errorf("audio file was not created: %w", err))
	}
	return nil
}

func classify(err error, fallback string) error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.MediaSource(fallback+": timed out", err)
	case strings.Contains(msg, "Video unavailable"), strings.Contains(msg, "Private video"):
		return apperror.MediaSource("Video is unavailable or private", err)
	case strings.Contains(msg, "age-restricted"), strings.Contains(msg, "confirm your age"):
		return apperror.MediaSource("Video is age-restricted", err)
	case strings.Contains(msg, "copyright"):
		return apperror.MediaSource("Video has copyright restrictions", err)
	default:
		return apperror.MediaSource(fallback, err)
	}
}

type DependencyReport struct {
	YTDLPFound  bool   `json:"yt_dlp_found"`
	YTDLPPath   string `json:"yt_dlp_path,omitempty"`
	FFmpegFound bool   `json:"ffmpeg_found"`
	FFmpegPath  string `json:"ffmpeg_path,omitempty"`
}

// DependencyStatus checks whether the audio pipeline's binaries are on PATH.
func DependencyStatus(binary string) DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath(binary); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	return report
}
