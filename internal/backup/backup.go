package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/calebnorth/stash/internal/config"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Manager runs periodic encrypted database backups to S3-compatible
// storage. Each backup checkpoints the WAL, copies the database file,
// encrypts the copy with a passphrase-derived key, and uploads it.
type Manager struct {
	cfg    config.Backup
	dbPath string
	db     *sql.DB
	client s3Client
	logger *slog.Logger
}

// NewManager creates a backup manager. The returned manager is disabled
// (Enabled returns false) when the S3 credentials are incomplete or no
// passphrase is set.
func NewManager(cfg config.Backup, dbPath string, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, dbPath: dbPath, db: db, logger: logger}

	if cfg.S3Bucket != "" && cfg.S3AccessKey != "" && cfg.S3SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg)
	}
	return m
}

func newS3Client(cfg config.Backup) *s3.Client {
	opts := s3.Options{
		Region:       cfg.S3Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager is configured to run backups.
func (m *Manager) Enabled() bool {
	return m.client != nil
}

// Run performs backups on the configured interval until ctx is
// cancelled. It returns immediately when the manager is disabled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if !m.Enabled() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil {
				m.logger.Error("backup failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single backup cycle.
func (m *Manager) RunOnce(ctx context.Context) error {
	if !m.Enabled() {
		return fmt.Errorf("backup not configured")
	}

	start := time.Now()
	key := fmt.Sprintf("backup-%s.db.enc", start.UTC().Format("2006-01-02T150405Z"))

	dbCopy := filepath.Join(os.TempDir(), "stash-backup.db")
	defer os.Remove(dbCopy)

	// Checkpoint WAL so the main file is complete, then copy it.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	if err := copyFile(m.dbPath, dbCopy); err != nil {
		return fmt.Errorf("copy database: %w", err)
	}

	plaintext, err := os.ReadFile(dbCopy)
	if err != nil {
		return fmt.Errorf("read database copy: %w", err)
	}

	encrypted, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	if err := m.upload(ctx, key, encrypted); err != nil {
		return err
	}

	m.logger.Info("backup complete",
		"key", key,
		"size", len(encrypted),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (m *Manager) upload(ctx context.Context, key string, data []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
