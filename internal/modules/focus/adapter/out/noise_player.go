package out

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"atheneum/internal/modules/focus/domain"
	focusout "atheneum/internal/modules/focus/port/out"
	apperrors "atheneum/internal/platform/errors"
)

var ErrNoAudioPlayer = fmt.Errorf("%w: no audio player found", apperrors.ErrNotFound)

// NoisePlayer renders ambience tracks into the cache directory once and
// loops them through the first audio player found on PATH.
type NoisePlayer struct {
	dir      string
	goos     string
	lookPath func(string) (string, error)
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ focusout.AmbiencePlayer = (*NoisePlayer)(nil)

func NewNoisePlayer(cacheDir string, logger *slog.Logger) *NoisePlayer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NoisePlayer{dir: cacheDir, goos: runtime.GOOS, lookPath: exec.LookPath, logger: logger}
}

func (p *NoisePlayer) Play(_ context.Context, ambience domain.Ambience) error {
	profile, ok := domain.ProfileFor(ambience)
	if !ok {
		return p.Stop()
	}
	track, err := p.Track(ambience, profile)
	if err != nil {
		return err
	}
	name, args, err := p.command(track)
	if err != nil {
		return err
	}
	if err := p.Stop(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.mu.Lock()
	p.cancel, p.done = cancel, done
	p.mu.Unlock()

	go func() {
		defer close(done)
		for {
			err := exec.CommandContext(ctx, name, args...).Run()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				p.logger.Warn("ambience player exited", "player", name, "err", err)
				return
			}
		}
	}()
	return nil
}

func (p *NoisePlayer) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Track returns the cached WAV for an ambience, rendering it on first use.
func (p *NoisePlayer) Track(ambience domain.Ambience, profile domain.Profile) (string, error) {
	path := filepath.Join(p.dir, "ambience-"+string(ambience)+".wav")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", apperrors.Storage("stat ambience track", err)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", apperrors.Storage("create cache dir", err)
	}
	tmp, err := os.CreateTemp(p.dir, "ambience-*.tmp")
	if err != nil {
		return "", apperrors.Storage("create ambience track", err)
	}
	defer os.Remove(tmp.Name())
	rng := rand.New(rand.NewPCG(uint64(profile.Frequency), uint64(profile.Volume*100)))
	if err := writeNoiseTrack(tmp, profile, trackSeconds, rng); err != nil {
		_ = tmp.Close()
		return "", apperrors.Storage("write ambience track", err)
	}
	if err := tmp.Close(); err != nil {
		return "", apperrors.Storage("close ambience track", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", apperrors.Storage("store ambience track", err)
	}
	return path, nil
}

func (p *NoisePlayer) command(track string) (string, []string, error) {
	type candidate struct {
		name string
		args []string
	}
	var candidates []candidate
	switch p.goos {
	case "darwin":
		candidates = []candidate{{"afplay", []string{track}}}
	case "windows":
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", track)
		candidates = []candidate{{"powershell", []string{"-NoProfile", "-Command", script}}}
	default:
		candidates = []candidate{
			{"paplay", []string{track}},
			{"aplay", []string{"-q", track}},
			{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", track}},
		}
	}
	for _, c := range candidates {
		if bin, err := p.lookPath(c.name); err == nil {
			return bin, c.args, nil
		}
	}
	return "", nil, ErrNoAudioPlayer
}
