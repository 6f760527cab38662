package app

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sorarc/unsor/internal/config"
	"github.com/sorarc/unsor/pkg/sor"
	"github.com/sorarc/unsor/pkg/sor/sorxz"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
)

// Unsor represents an active unsor object
type Unsor struct {
	ctx  context.Context
	meta config.Meta
	cli  config.Cli
}

// New creates new unsor instance
func New(meta config.Meta, cli config.Cli) (*Unsor, error) {
	if !cli.List && len(cli.Dist) == 0 {
		return nil, errors.New("dist folder required unless --list is set")
	}
	return &Unsor{
		ctx:  context.Background(),
		meta: meta,
		cli:  cli,
	}, nil
}

// Start starts unsor
func (c *Unsor) Start() error {
	buf, err := os.ReadFile(c.cli.Source)
	if err != nil {
		return errors.Wrapf(err, "cannot read source archive %q", c.cli.Source)
	}

	logger := log.With().Str("src", c.cli.Source).Logger()

	var (
		progress *mpb.Progress
		bar      *mpb.Bar
	)
	opts := sor.Options{
		Delegate: sorxz.Codec{},
		Logger:   &logger,
	}
	if !c.cli.List && !c.cli.NoProgress {
		progress = mpb.New(mpb.WithWidth(64))
		opts.OnEntry = func(index, total int, status string) {
			if bar != nil {
				bar.SetCurrent(int64(index))
			}
		}
	}

	dec, err := sor.NewDecoder(buf, opts)
	if err != nil {
		return errors.Wrap(err, "cannot open archive")
	}
	logger.Info().Stringer("version", dec.Version()).Int("entries", dec.Count()).Msg("Extracting archive")

	if progress != nil {
		bar = progress.AddBar(int64(dec.Count()),
			mpb.PrependDecorators(
				decor.Name("extracting"),
				decor.CountersNoUnit(" %d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	var entries []sor.Entry
	for {
		e, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "cannot decode entry")
		}
		entries = append(entries, *e)
	}
	if bar != nil {
		bar.SetTotal(int64(len(entries)), true)
		progress.Wait()
	}

	if c.cli.List {
		for i, e := range entries {
			logger.Info().
				Int("index", i).
				Stringer("type", e.Type).
				Stringer("method", e.Method).
				Uint32("original_size", e.OriginalSize).
				Bool("decoded", e.Decoded).
				Msg(e.Name)
		}
		return nil
	}

	if _, err := os.Stat(c.cli.Dist); err == nil && c.cli.RmDist {
		if err := os.RemoveAll(c.cli.Dist); err != nil {
			return errors.Wrapf(err, "failed to remove dist folder %q", c.cli.Dist)
		}
	}
	if err := os.MkdirAll(c.cli.Dist, 0700); err != nil {
		return errors.Wrapf(err, "failed to create dist folder %q", c.cli.Dist)
	}

	// Output paths are resolved upfront so colliding entry names cannot
	// race inside the write group.
	paths := resolvePaths(c.cli.Dist, entries)

	eg, _ := errgroup.WithContext(c.ctx)
	for i := range entries {
		entry := entries[i]
		path := paths[i]
		eg.Go(func() error {
			sublogger := logger.With().Str("entry", entry.Name).Logger()
			if !entry.Decoded {
				sublogger.Warn().Stringer("method", entry.Method).Msg("payload kept undecoded")
			}
			sublogger.Debug().Msgf("Writing %s", path)
			return writeEntry(path, entry.Data)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	var originalSize, decodedSize uint64
	restored := 0
	for _, e := range entries {
		originalSize += uint64(e.OriginalSize)
		decodedSize += uint64(len(e.Data))
		if e.Decoded && int(e.OriginalSize) == len(e.Data) {
			restored++
		}
	}
	logger.Info().
		Int("files", len(entries)).
		Int("restored", restored).
		Uint64("original_size", originalSize).
		Uint64("decoded_size", decodedSize).
		Msg("Extraction complete")

	return nil
}

// Close closes unsor
func (c *Unsor) Close() {
	// noop
}
