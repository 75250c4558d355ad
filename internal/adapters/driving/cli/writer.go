package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driving/httpapi"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// writerLockFile lives in store.dir. Only the process holding it writes
// to the index.
const writerLockFile = "writer.lock"

// errWriterBusy reports that another process holds the writer lock.
var errWriterBusy = errors.New("another termsync process is writing to the index")

// remoteService queues jobs on the running service.
type remoteService interface {
	Reindex(ctx context.Context, graphID domain.GraphID) (*httpapi.Accepted, error)
	Notify(ctx context.Context, event domain.ChangeEvent) (*httpapi.Accepted, error)
}

var (
	writerLock *flock.Flock

	// lockWriter takes the writer lock for this process. Tests replace it.
	lockWriter = acquireWriterLock

	// newRemote connects to the service that holds the writer lock.
	newRemote = connectRemote
)

func acquireWriterLock() error {
	if writerLock != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(settings.Store.Dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	lock := flock.New(filepath.Join(settings.Store.Dir, writerLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("taking writer lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock %s)", errWriterBusy, lock.Path())
	}

	writerLock = lock
	logger.Debug("Holding writer lock %s", lock.Path())
	return nil
}

func releaseWriterLock() {
	if writerLock == nil {
		return
	}
	if err := writerLock.Unlock(); err != nil {
		logger.Warn("Releasing writer lock: %v", err)
	}
	writerLock = nil
}

func connectRemote() (remoteService, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return httpapi.NewClient(httpapi.EndpointFor(settings.Server.Addr)), nil
}

// refuseWhileServing wraps a busy writer lock for commands that cannot be
// handed to the running service.
func refuseWhileServing(err error, command string) error {
	if errors.Is(err, errWriterBusy) {
		return fmt.Errorf("%w; stop serve before running %s", err, command)
	}
	return err
}

func printQueued(cmd *cobra.Command, accepted *httpapi.Accepted) {
	cmd.Printf("Service is running; queued %s job (%d waiting).\n", accepted.Job, accepted.Queued)
}
