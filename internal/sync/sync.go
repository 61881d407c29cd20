// Package sync implements the pull loop: enumerate remote files per root,
// filter out junk paths, map each file under the local tree and copy it
// unless the local copy is already current. Outcomes land in the run
// manifest, which also produces the per-root summaries and skip logs.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"

	"github.com/prasmono/adb-to-local-copier/internal/db"
	"github.com/prasmono/adb-to-local-copier/internal/logging"
	"github.com/prasmono/adb-to-local-copier/pkg/models"
)

// ErrPushNotSupported is returned whenever a run is asked to copy toward
// the device.
var ErrPushNotSupported = errors.New("push direction is not supported")

// DefaultBlockList holds the junk-path substrings rejected without a copy
// attempt. Matching is case-insensitive against the full remote path.
var DefaultBlockList = []string{
	"cache",
	".thumbnails",
	".mcrypt1",
	".trashed",
}

// overwriteSlack is the tolerance in seconds applied when comparing remote
// and local modification times. Device clocks drift and the local mtime
// loses the fraction, so a remote file up to this much older still wins.
const overwriteSlack = 100

// invalidSegmentChars cannot appear in file names on every filesystem the
// local tree may live on.
var invalidSegmentChars = regexp.MustCompile(`[:*?"<>|]`)

// Bridge is the device side of the sync loop.
type Bridge interface {
	ListRoots(ctx context.Context) ([]string, error)
	FindFiles(ctx context.Context, root string) ([]string, error)
	StatMtime(ctx context.Context, remotePath string) (int64, error)
	Pull(ctx context.Context, remotePath, localPath string) (int64, error)
}

// Syncer drives one pull run over a bridge, recording every file in the
// manifest as it goes.
type Syncer struct {
	bridge    Bridge
	db        *db.DB
	log       *logging.Logger
	config    *models.Config
	blockList []string
}

// NewSyncer creates a syncer. An empty Config.BlockList selects
// DefaultBlockList.
func NewSyncer(bridge Bridge, manifest *db.DB, logger *logging.Logger, config *models.Config) *Syncer {
	blockList := config.BlockList
	if len(blockList) == 0 {
		blockList = DefaultBlockList
	}
	lowered := make([]string, len(blockList))
	for i, block := range blockList {
		lowered[i] = strings.ToLower(block)
	}
	return &Syncer{
		bridge:    bridge,
		db:        manifest,
		log:       logger,
		config:    config,
		blockList: lowered,
	}
}

// Run synchronizes every configured root, or every discovered one when the
// configuration names none. A discovery failure aborts the run; failures on
// a single root or file are logged and the run moves on.
func (s *Syncer) Run(ctx context.Context) error {
	if s.config.Direction == models.DirectionPush {
		return ErrPushNotSupported
	}

	roots := s.config.RemoteRoots
	if len(roots) == 0 {
		var err error
		roots, err = s.bridge.ListRoots(ctx)
		if err != nil {
			return fmt.Errorf("discover remote roots: %w", err)
		}
	}
	if len(roots) == 0 {
		s.log.Info("nothing to copy: no remote roots")
		return nil
	}
	s.log.Info("syncing %d remote roots to %s", len(roots), s.config.LocalRoot)

	start := time.Now()
	totals := &models.RunSummary{}
	for _, root := range roots {
		summary, err := s.syncRoot(ctx, root)
		if err != nil {
			s.log.Error("sync %s: %v", root, err)
			continue
		}
		s.log.RootSummary(root, summary)
		totals.Add(summary)
	}
	totals.Elapsed = time.Since(start)
	s.log.RunTotals(len(roots), totals)
	return nil
}

// syncRoot copies one remote root and returns its summary.
func (s *Syncer) syncRoot(ctx context.Context, root string) (*models.RunSummary, error) {
	files, err := s.bridge.FindFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	records := make([]models.FileRecord, len(files))
	for i, remote := range files {
		records[i] = models.FileRecord{
			Root:       root,
			RemotePath: remote,
			LocalPath:  MapLocalPath(s.config.LocalRoot, remote),
			Status:     models.StatusPending,
		}
	}
	if err := s.db.SaveFileRecordsBatch(records); err != nil {
		return nil, fmt.Errorf("record files for %s: %w", root, err)
	}

	progress := newRootProgress(root, len(files), s.config.Quiet)
	for _, record := range records {
		progress.current(record.RemotePath)
		s.processFile(ctx, record)
		progress.increment()
	}
	progress.finish()

	summary, err := s.db.Summary(root)
	if err != nil {
		return nil, err
	}
	summary.Elapsed = time.Since(start)
	summary.SkippedPaths, err = s.db.SkippedPaths(root)
	if err != nil {
		return nil, err
	}

	if s.config.SkipLog && len(summary.SkippedPaths) > 0 {
		logPath, err := s.writeSkipLog(root, summary.SkippedPaths)
		if err != nil {
			s.log.Error("write skip log for %s: %v", root, err)
		} else {
			s.log.Info("skip log: %s", logPath)
		}
	}
	return summary, nil
}

// processFile decides copy-or-skip for one enumerated file and records the
// outcome. Copy failures are terminal for the file, never for the run.
func (s *Syncer) processFile(ctx context.Context, record models.FileRecord) {
	if hit, blocked := s.blockListed(record.RemotePath); blocked {
		s.setStatus(record.RemotePath, models.StatusSkipped, "block list: "+hit, 0)
		return
	}

	exists := fileExists(record.LocalPath)
	overwrite := false
	if s.config.CopyNewer && exists {
		overwrite = s.remoteIsNewer(ctx, record.RemotePath, record.LocalPath)
	}
	if exists && !overwrite {
		s.setStatus(record.RemotePath, models.StatusSkipped, "local copy is current", 0)
		return
	}

	if err := os.MkdirAll(filepath.Dir(record.LocalPath), 0o755); err != nil {
		s.log.Error("mkdir for %s: %v", record.RemotePath, err)
		s.setStatus(record.RemotePath, models.StatusFailed, err.Error(), 0)
		return
	}

	bytes, err := s.bridge.Pull(ctx, record.RemotePath, record.LocalPath)
	if err != nil {
		s.log.Error("%v", err)
		s.setStatus(record.RemotePath, models.StatusFailed, err.Error(), 0)
		return
	}

	status := models.StatusCopied
	if overwrite {
		status = models.StatusOverwritten
	}
	s.setStatus(record.RemotePath, status, "", bytes)
}

func (s *Syncer) setStatus(remotePath, status, detail string, bytes int64) {
	if err := s.db.UpdateFileStatus(remotePath, status, detail, bytes); err != nil {
		s.log.Error("record status for %s: %v", remotePath, err)
	}
}

// blockListed reports whether the path contains a block-list substring and
// which one matched.
func (s *Syncer) blockListed(remotePath string) (string, bool) {
	lower := strings.ToLower(remotePath)
	for _, block := range s.blockList {
		if strings.Contains(lower, block) {
			return block, true
		}
	}
	return "", false
}

// remoteIsNewer queries the device for the file's modification time and
// compares it to the local copy. An unreadable timestamp on either side
// denies the overwrite.
func (s *Syncer) remoteIsNewer(ctx context.Context, remotePath, localPath string) bool {
	info, err := os.Stat(localPath)
	if err != nil {
		return false
	}
	remote, err := s.bridge.StatMtime(ctx, remotePath)
	if err != nil {
		return false
	}
	return overwriteAuthorized(remote, info.ModTime().Unix())
}

// overwriteAuthorized implements the mtime comparison: the remote copy wins
// unless it is more than overwriteSlack seconds older than the local one.
func overwriteAuthorized(remoteUnix, localUnix int64) bool {
	return remoteUnix-localUnix > -overwriteSlack
}

// writeSkipLog persists the skipped paths for one root, one per line. The
// file name embeds a timestamp, the root's base name and a random
// identifier so repeated runs never collide.
func (s *Syncer) writeSkipLog(root string, paths []string) (string, error) {
	dir := s.config.SkipLogDir
	if dir == "" {
		dir = s.config.LocalRoot
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("skipped_%s_%s_%s.txt",
		time.Now().Format("20060102_150405"),
		sanitizeSegment(path.Base(root)),
		uuid.NewString(),
	)
	logPath := filepath.Join(dir, name)
	data := strings.Join(paths, "\n") + "\n"
	if err := os.WriteFile(logPath, []byte(data), 0o644); err != nil {
		return "", err
	}
	return logPath, nil
}

// MapLocalPath mirrors a remote path under localRoot. Every remote segment
// is sanitized and kept, including the leading root segment, so the local
// tree reproduces the device layout exactly across runs.
func MapLocalPath(localRoot, remotePath string) string {
	parts := []string{localRoot}
	for _, segment := range strings.Split(remotePath, "/") {
		parts = append(parts, sanitizeSegment(segment))
	}
	return filepath.Join(parts...)
}

// sanitizeSegment replaces the characters forbidden in local file names
// with "-". Already-clean segments pass through unchanged.
func sanitizeSegment(segment string) string {
	return invalidSegmentChars.ReplaceAllString(segment, "-")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// rootProgress is the live status line for one root: counters, bar and the
// remote file currently being considered. It owns its terminal line for
// the duration of the root and is discarded with it.
type rootProgress struct {
	bar *pb.ProgressBar
}

func newRootProgress(root string, total int, quiet bool) *rootProgress {
	bar := pb.New(total)
	bar.SetTemplate(`{{counters . }} {{bar . }} {{percent . }} {{string . "file"}}`)
	bar.Set("file", root)
	if quiet {
		bar.SetWriter(io.Discard)
	}
	bar.Start()
	return &rootProgress{bar: bar}
}

func (p *rootProgress) current(remotePath string) {
	p.bar.Set("file", remotePath)
}

func (p *rootProgress) increment() {
	p.bar.Increment()
}

func (p *rootProgress) finish() {
	p.bar.Finish()
}
