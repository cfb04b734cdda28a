package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"dialog-collator/core/storage"
	"dialog-collator/feature/collator"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrEmptyDocument is returned when there is nothing to store.
	ErrEmptyDocument = errors.New("archive: document has no body")
	// ErrNotFound is returned when a presentity has no archived document.
	ErrNotFound = errors.New("archive: no document archived")
)

const timeLayout = "20060102T150405.000000000Z"

// Entry describes one archived document.
type Entry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores published documents in the object store, one object per
// publication under <prefix><presentity>/.
type Archive struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// New creates an archive writing to cfg.Bucket.
func New(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archive {
	return &Archive{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Archive stores doc. Object names sort by publication time.
func (a *Archive) Archive(ctx context.Context, presentity string, doc *collator.Document) error {
	if doc == nil || len(doc.Body) == 0 {
		return ErrEmptyDocument
	}

	name := fmt.Sprintf("%s%s-v%d.xml", a.folder(presentity), a.now().UTC().Format(timeLayout), doc.Version)
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/xml"
	}

	info, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(doc.Body), int64(len(doc.Body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("archive %s: %w", name, err)
	}

	a.logger.Debug("Document archived",
		zap.String("presentity", presentity),
		zap.String("object", name),
		zap.Int64("size", info.Size),
	)
	return nil
}

// List returns the archived documents of presentity, oldest first.
func (a *Archive) List(ctx context.Context, presentity string) ([]Entry, error) {
	var entries []Entry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.folder(presentity)}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list archive: %w", obj.Err)
		}
		entries = append(entries, Entry{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Latest returns the most recent archived document of presentity.
func (a *Archive) Latest(ctx context.Context, presentity string) (Entry, []byte, error) {
	entries, err := a.List(ctx, presentity)
	if err != nil {
		return Entry{}, nil, err
	}
	if len(entries) == 0 {
		return Entry{}, nil, ErrNotFound
	}

	last := entries[len(entries)-1]
	obj, err := a.client.GetObject(ctx, a.bucket, last.Key, minio.GetObjectOptions{})
	if err != nil {
		return Entry{}, nil, fmt.Errorf("get %s: %w", last.Key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("read %s: %w", last.Key, err)
	}
	return last, body, nil
}

func (a *Archive) folder(presentity string) string {
	return a.prefix + ObjectKey(presentity) + "/"
}

// ObjectKey turns a presentity URI into a path segment: the scheme, angle
// brackets and any parameters are dropped and "/" is replaced.
func ObjectKey(presentity string) string {
	s := strings.TrimSpace(presentity)
	s = strings.TrimPrefix(strings.TrimSuffix(s, ">"), "<")
	s = strings.TrimPrefix(s, "sips:")
	s = strings.TrimPrefix(s, "sip:")
	if i := strings.IndexAny(s, ";?"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "/", "_")
	if s == "" {
		return "_"
	}
	return s
}
