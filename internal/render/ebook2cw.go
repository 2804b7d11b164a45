package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/quailyquaily/text2cw/internal/cwerr"
	"github.com/quailyquaily/text2cw/internal/settings"
)

const (
	DefaultCommand = "/usr/bin/ebook2cw"
	// ArtifactSuffix is the chapter number ebook2cw appends to the output path.
	ArtifactSuffix = "0000"

	noiseFilterBandwidth = "500"
	noiseFilterCenter    = "800"
	maxStderrBytes       = 8 * 1024
)

// Renderer produces the artifact of a job and returns its final path.
type Renderer interface {
	Render(ctx context.Context, job Job) (string, error)
}

// Ebook2CW runs the ebook2cw command line renderer.
type Ebook2CW struct {
	Command string
}

// Args returns the renderer arguments for job.
func Args(job Job) []string {
	args := []string{"-c", "DONOTSEPARATECHAPTERS", "-o", job.TempBase, "-u"}
	args = append(args, "-w", strconv.Itoa(job.WPM))
	if job.EffectiveWPM != nil {
		args = append(args, "-e", strconv.Itoa(*job.EffectiveWPM))
	}
	if job.ExtraSpace != nil {
		args = append(args, "-W", strconv.FormatFloat(*job.ExtraSpace, 'f', -1, 64))
	}
	if job.QRQ != nil {
		args = append(args, "-Q", strconv.Itoa(*job.QRQ))
	}
	args = append(args, "-f", strconv.Itoa(job.Tone))
	if job.SNR != nil {
		args = append(args, "-N", strconv.Itoa(*job.SNR), "-B", noiseFilterBandwidth, "-C", noiseFilterCenter)
	}
	args = append(args, "-T", waveformCode(job.Waveform))
	if job.Format == settings.FormatVoice {
		args = append(args, "-O")
	}
	args = append(args, "-t", job.Title, "-a", job.Author)
	return args
}

func waveformCode(w string) string {
	switch w {
	case settings.WaveformSawtooth:
		return "1"
	case settings.WaveformSquare:
		return "2"
	default:
		return "0"
	}
}

func (e Ebook2CW) Render(ctx context.Context, job Job) (string, error) {
	command := strings.TrimSpace(e.Command)
	if command == "" {
		command = DefaultCommand
	}
	cmd := exec.CommandContext(ctx, command, Args(job)...)
	cmd.Stdin = strings.NewReader(job.Text + "\n")
	var stderr limitedBuffer
	stderr.Limit = maxStderrBytes
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		failure := &cwerr.RenderFailure{Stage: cwerr.StageRun, Title: job.Title, Stderr: string(stderr.Bytes()), Err: err}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			failure.ExitCode = ee.ExitCode()
		}
		if rmErr := remove(job.RawPath()); rmErr != nil {
			failure.Err = errors.Join(err, rmErr)
		}
		return "", failure
	}
	if _, err := os.Stat(job.RawPath()); err != nil {
		return "", &cwerr.RenderFailure{Stage: cwerr.StageArtifact, Title: job.Title, Stderr: string(stderr.Bytes()), Err: err}
	}
	if err := os.Rename(job.RawPath(), job.FinalPath()); err != nil {
		return "", &cwerr.RenderFailure{Stage: cwerr.StageRename, Title: job.Title, Err: errors.Join(err, remove(job.RawPath()))}
	}
	return job.FinalPath(), nil
}

type limitedBuffer struct {
	Limit     int
	Truncated bool
	buf       bytes.Buffer
}

func (w *limitedBuffer) Write(p []byte) (int, error) {
	if w.Limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.Limit - w.buf.Len()
	if remaining <= 0 {
		w.Truncated = true
		return len(p), nil
	}
	if len(p) <= remaining {
		return w.buf.Write(p)
	}
	_, _ = w.buf.Write(p[:remaining])
	w.Truncated = true
	return len(p), nil
}

func (w *limitedBuffer) Bytes() []byte {
	return w.buf.Bytes()
}
