package seed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"allowhost/internal/support"
)

const (
	DefaultLockKey = "allowhost:leader:seed_import"

	maxLineBytes = 1 << 20
)

// Store is the write side the importer needs.
type Store interface {
	InsertHostnames(ctx context.Context, hostnames []string) (int64, error)
}

// Outcome summarizes one import run.
type Outcome struct {
	Path     string
	Parsed   int
	Inserted int64
	Skipped  int64
	Duration time.Duration
}

type Importer struct {
	Store Store

	// UseLeaderLock serializes imports across instances through Redis.
	UseLeaderLock bool
	LockKey       string
	LockTTL       time.Duration

	group singleflight.Group
}

func NewImporter(store Store) *Importer {
	return &Importer{
		Store:   store,
		LockKey: DefaultLockKey,
		LockTTL: support.DefaultLeadershipTTL,
	}
}

// Import loads path into the store. Concurrent calls for the same path share one run.
func (im *Importer) Import(ctx context.Context, path string) (*Outcome, error) {
	if im == nil || im.Store == nil {
		return nil, errors.New("seed: importer has no store")
	}

	result, err, shared := im.group.Do(path, func() (interface{}, error) {
		if !im.UseLeaderLock {
			return im.doImport(ctx, path)
		}

		var outcome *Outcome
		lockErr := support.WithLeaderLock(ctx, im.lockKey(), im.LockTTL, func(leaderCtx context.Context) error {
			var err error
			outcome, err = im.doImport(leaderCtx, path)
			return err
		})
		return outcome, lockErr
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("Seed import shared with a concurrent caller", "path", path)
	}

	outcome, _ := result.(*Outcome)
	return outcome, nil
}

func (im *Importer) lockKey() string {
	if im.LockKey == "" {
		return DefaultLockKey
	}
	return im.LockKey
}

func (im *Importer) doImport(ctx context.Context, path string) (*Outcome, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: open hostnames file: %w", err)
	}
	defer file.Close()

	hostnames, parsed, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}

	inserted, err := im.Store.InsertHostnames(ctx, hostnames)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Path:     path,
		Parsed:   parsed,
		Inserted: inserted,
		Skipped:  int64(parsed) - inserted,
		Duration: time.Since(start),
	}

	log.Info("Seed import completed",
		"path", path,
		"inserted", outcome.Inserted,
		"skipped", outcome.Skipped,
		"took", outcome.Duration.Round(time.Millisecond),
	)

	return outcome, nil
}

// ParseHostnames returns the distinct hostnames of a seed file in first-seen order.
// Each line is trimmed and lowercased; blank lines and "#" comments are dropped.
func ParseHostnames(r io.Reader) ([]string, error) {
	hostnames, _, err := parse(r)
	return hostnames, err
}

// parse also reports how many hostname lines were read, duplicates included.
func parse(r io.Reader) ([]string, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	seen := make(map[string]struct{})
	var (
		hostnames []string
		parsed    int
	)

	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed++
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		hostnames = append(hostnames, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}

	return hostnames, parsed, nil
}
