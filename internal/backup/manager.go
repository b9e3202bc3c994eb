package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"message-board/internal/storage"
)

const (
	snapshotPrefix = "board-"
	snapshotSuffix = ".db"
	// fixed width so object keys sort in creation order
	stampFormat = "20060102T150405.000000000Z"
)

// SnapshotFunc writes a consistent copy of the database to path.
type SnapshotFunc func(ctx context.Context, path string) error

// Manager periodically snapshots the database and ships it to object storage.
type Manager interface {
	Start(ctx context.Context) error
	RunOnce(ctx context.Context) (string, error)
	Shutdown()
}

type Config struct {
	Bucket    string
	KeyPrefix string
	Interval  time.Duration
	Keep      int
	DataDir   string
	Logger    *logrus.Logger
}

type manager struct {
	cfg      Config
	snapshot SnapshotFunc
	storage  storage.Service
	now      func() time.Time

	// serializes runs so a tick never overlaps a manual RunOnce
	runMu  sync.Mutex
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewManager(cfg Config, snapshot SnapshotFunc, storage storage.Service) Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.DataDir == "" {
		cfg.DataDir = os.TempDir()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:      cfg,
		snapshot: snapshot,
		storage:  storage,
		now:      time.Now,
	}
}

// Start launches the ticker loop. It returns once the loop is running.
func (m *manager) Start(ctx context.Context) error {
	if m.cfg.Bucket == "" {
		return fmt.Errorf("backup bucket is required")
	}
	if err := os.MkdirAll(m.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop(loopCtx)
	}()

	m.cfg.Logger.Infof("backup manager started, interval %s, bucket %s", m.cfg.Interval, m.cfg.Bucket)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("backup manager stopped")
}

func (m *manager) loop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.cfg.Logger.WithError(err).Error("backup run failed")
			}
		}
	}
}

// RunOnce snapshots, uploads, and prunes old snapshots. It returns the
// location of the uploaded object.
func (m *manager) RunOnce(ctx context.Context) (string, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	name := snapshotPrefix + m.now().UTC().Format(stampFormat) + snapshotSuffix
	localPath := filepath.Join(m.cfg.DataDir, name)

	if err := m.snapshot(ctx, localPath); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			m.cfg.Logger.WithError(err).Warnf("remove snapshot %s", localPath)
		}
	}()

	location, err := m.storage.UploadFile(ctx, localPath, storage.UploadOptions{
		Bucket:      m.cfg.Bucket,
		Key:         m.objectKey(name),
		ContentType: "application/vnd.sqlite3",
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	m.cfg.Logger.WithField("location", location).Info("snapshot uploaded")

	if err := m.prune(ctx); err != nil {
		// the upload already succeeded
		m.cfg.Logger.WithError(err).Warn("prune snapshots")
	}
	return location, nil
}

func (m *manager) prune(ctx context.Context) error {
	if m.cfg.Keep <= 0 {
		return nil
	}

	prefix := m.objectKey(snapshotPrefix)
	objects, err := m.storage.ListObjects(ctx, m.cfg.Bucket, prefix)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, snapshotSuffix) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) <= m.cfg.Keep {
		return nil
	}

	sort.Strings(keys)
	stale := keys[:len(keys)-m.cfg.Keep]
	if err := m.storage.DeleteObjects(ctx, m.cfg.Bucket, stale); err != nil {
		return err
	}
	m.cfg.Logger.Infof("pruned %d old snapshots", len(stale))
	return nil
}

func (m *manager) objectKey(name string) string {
	prefix := strings.Trim(m.cfg.KeyPrefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
