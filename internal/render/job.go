// Package render turns settings and text into render jobs and runs them
// through the external ebook2cw renderer.
package render

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quailyquaily/text2cw/internal/cwerr"
	"github.com/quailyquaily/text2cw/internal/settings"
)

// WPMToken in a title is replaced by the speed of each job.
const WPMToken = "-wpm-"

// Job is one renderer invocation for one speed.
type Job struct {
	Text         string
	WPM          int
	EffectiveWPM *int
	ExtraSpace   *float64
	QRQ          *int
	Tone         int
	Waveform     string
	SNR          *int
	Title        string
	Format       string
	RequesterTag string
	Author       string
	// TempBase is the output path given to the renderer, without suffix.
	TempBase string
}

// Ext is the artifact extension for the job format.
func (j Job) Ext() string {
	if j.Format == settings.FormatVoice {
		return ".ogg"
	}
	return ".mp3"
}

// RawPath is where the renderer writes the artifact.
func (j Job) RawPath() string {
	return j.TempBase + ArtifactSuffix + j.Ext()
}

// FinalPath is the artifact path after the post-render rename.
func (j Job) FinalPath() string {
	return j.TempBase + j.Ext()
}

// Builder derives jobs from a settings snapshot.
type Builder struct {
	// WorkDir holds temporary artifacts. It should be private to the process.
	WorkDir string
	// Author is passed to the renderer as the author tag.
	Author string
}

// Build returns one job per wpm value, in order. tag disambiguates artifacts
// of concurrent requests of the same user, e.g. a message id.
func (b Builder) Build(userID, tag string, values settings.Values, text string) ([]Job, error) {
	speeds := values.Ints(settings.KeyWPM)
	if len(speeds) == 0 {
		return nil, cwerr.Invalid(settings.KeyWPM, "no speed configured")
	}
	title := TitleTemplate(values.String(settings.KeyTitle))

	base := Job{
		Text:         text,
		Tone:         values.Int(settings.KeyTone),
		Waveform:     values.String(settings.KeyWaveform),
		Format:       values.String(settings.KeyFormat),
		RequesterTag: tag,
		Author:       b.Author,
	}
	if n, ok := values.OptInt(settings.KeyEffectiveWPM); ok {
		base.EffectiveWPM = &n
	}
	if f, ok := values.OptFloat(settings.KeyExtraSpace); ok {
		base.ExtraSpace = &f
	}
	if n, ok := values.OptInt(settings.KeyQRQ); ok {
		base.QRQ = &n
	}
	if n, ok := values.OptInt(settings.KeySNR); ok {
		base.SNR = &n
	}

	jobs := make([]Job, 0, len(speeds))
	for i, w := range speeds {
		job := base
		job.WPM = w
		job.Title = strings.ReplaceAll(title, WPMToken, strconv.Itoa(w))
		job.TempBase = filepath.Join(b.WorkDir, tempName(userID, tag, i, job.Title))
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// TitleTemplate appends " -wpm-wpm" unless the title already has the token.
func TitleTemplate(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "CW Text"
	}
	if !strings.Contains(title, WPMToken) {
		title += " " + WPMToken + "wpm"
	}
	return title
}

func tempName(userID, tag string, index int, title string) string {
	return fmt.Sprintf("%s_%s_%d_%s", safeName(userID), safeName(tag), index, safeName(title))
}

func safeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
