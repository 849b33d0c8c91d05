package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/acmclub/ojrank/internal/apperrors"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/models"
)

// FileStore keeps the live snapshot as one JSON file and every superseded
// snapshot under a date-stamped name in the archive directory.
type FileStore struct {
	dataDir    string
	livePath   string
	archiveDir string

	mu     sync.Mutex
	logger *logger.Logger
}

func NewFileStore(dataDir, snapshotFile, archiveDir string, log *logger.Logger) *FileStore {
	return &FileStore{
		dataDir:    dataDir,
		livePath:   filepath.Join(dataDir, snapshotFile),
		archiveDir: filepath.Join(dataDir, archiveDir),
		logger:     log.With("component", "FileStore"),
	}
}

func (s *FileStore) Load(_ context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.livePath)
	if os.IsNotExist(err) {
		s.logger.Info("No snapshot on disk, starting from an empty roster", "path", s.livePath)
		return models.NewSnapshot(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to read snapshot")
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt snapshot is not a first run; losing the roster silently
		// would discard every accumulated day.
		return nil, apperrors.Wrap(err, apperrors.CodeStoreIO, "snapshot file is corrupt")
	}

	return &snapshot, nil
}

func (s *FileStore) Save(_ context.Context, snapshot *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to create data directories")
	}

	if err := s.archiveLive(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to encode snapshot")
	}

	tmp := s.livePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to write snapshot")
	}
	if err := os.Rename(tmp, s.livePath); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to replace snapshot")
	}

	s.logger.Debug("Snapshot saved", "path", s.livePath, "users", len(snapshot.Users))
	return nil
}

// archiveLive moves the current live snapshot, if any, under a date-stamped
// archive name so each prior day stays individually recoverable.
func (s *FileStore) archiveLive() error {
	if _, err := os.Stat(s.livePath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to stat snapshot")
	}

	name := fmt.Sprintf("leaderboard-%s.json", time.Now().Format("2006-01-02"))
	archivePath := filepath.Join(s.archiveDir, name)

	if err := os.Rename(s.livePath, archivePath); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStoreIO, "failed to archive snapshot")
	}

	s.logger.Debug("Archived previous snapshot", "path", archivePath)
	return nil
}
