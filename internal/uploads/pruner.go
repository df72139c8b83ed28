package uploads

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// FilenameLister reports which upload filenames are still referenced.
type FilenameLister interface {
	Filenames(ctx context.Context) ([]string, error)
}

// Pruner periodically removes uploaded files that no cat references anymore,
// e.g. after a cat or its owner was deleted. Thumbnails follow their
// originals.
type Pruner struct {
	storage  *Storage
	cats     FilenameLister
	schedule cron.Schedule
	done     chan bool
}

// NewPruner creates a pruner firing on the given standard cron expression.
func NewPruner(storage *Storage, cats FilenameLister, cronExpr string) (*Pruner, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Pruner{
		storage:  storage,
		cats:     cats,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the pruning loop. Blocks until Stop is called.
func (p *Pruner) Run() {
	log.Info().Msg("Starting upload pruner...")
	for {
		timer := time.NewTimer(time.Until(p.schedule.Next(time.Now())))
		select {
		case <-p.done:
			timer.Stop()
			log.Info().Msg("Stopping upload pruner.")
			return
		case <-timer.C:
			p.pruneOnce(context.Background())
		}
	}
}

// Stop halts the pruning loop.
func (p *Pruner) Stop() {
	p.done <- true
}

// pruneOnce removes every file in the upload directory that is neither a
// referenced original nor the thumbnail of one.
func (p *Pruner) pruneOnce(ctx context.Context) {
	referenced, err := p.cats.Filenames(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Pruner: failed to list referenced filenames")
		return
	}
	live := make(map[string]bool, 2*len(referenced))
	for _, name := range referenced {
		live[name] = true
		live[ThumbName(name)] = true
	}

	entries, err := os.ReadDir(p.storage.dir)
	if err != nil {
		log.Error().Err(err).Msg("Pruner: failed to read upload directory")
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || live[entry.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(p.storage.dir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Pruner: failed to remove orphaned file")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Pruner: removed orphaned upload files")
	}
}
