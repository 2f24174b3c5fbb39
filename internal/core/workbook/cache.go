package workbook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dashboard-service/internal/domain"
	"dashboard-service/internal/metrics"
)

// Cache holds the current load result keyed by workbook content. Readers get a
// complete snapshot; a new workbook replaces it wholesale.
type Cache struct {
	loader *Loader
	logger *zap.Logger

	current atomic.Pointer[domain.LoadResult]
	group   singleflight.Group

	mu        sync.Mutex
	seq       uint64
	storedSeq uint64
}

// NewCache creates an empty cache in front of the loader.
func NewCache(loader *Loader, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{loader: loader, logger: logger}
}

// Origin says what triggered a load. It labels metrics, so it stays a small
// fixed set.
type Origin string

const (
	OriginUpload  Origin = "upload"
	OriginReload  Origin = "reload"
	OriginStartup Origin = "startup"
)

// Current returns the latest snapshot or domain.ErrNoWorkbook.
func (c *Cache) Current() (*domain.LoadResult, error) {
	if res := c.current.Load(); res != nil {
		return res, nil
	}
	return nil, domain.ErrNoWorkbook
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.storedSeq = c.seq
	c.current.Store(nil)
	c.publishCounts(nil)
}

// publishCounts sets the records gauge from the stored snapshot. Kinds that
// are not loaded read zero.
func (c *Cache) publishCounts(res *domain.LoadResult) {
	for _, spec := range c.loader.Registry() {
		n := 0
		if res != nil {
			if set, ok := res.Sets[spec.Kind]; ok && set != nil {
				n = set.Len()
			}
		}
		metrics.SetRecordsLoaded(string(spec.Kind), n)
	}
}

// Digest returns the content key of workbook bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load returns the snapshot for the given workbook bytes, parsing them only when
// they differ from the cached content. source names the file for the result
// and the logs.
func (c *Cache) Load(ctx context.Context, data []byte, source string, origin Origin) (*domain.LoadResult, error) {
	digest := Digest(data)
	if cur := c.current.Load(); cur != nil && cur.Digest == digest {
		metrics.CacheHitsTotal.Inc()
		return cur, nil
	}

	v, err, _ := c.group.Do(digest, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.seq++
		seq := c.seq
		c.mu.Unlock()

		start := time.Now()
		wb, err := OpenWorkbook(data)
		if err != nil {
			metrics.RecordWorkbookLoad(string(origin), "error", time.Since(start))
			return nil, fmt.Errorf("error al abrir el libro: %w", err)
		}
		defer wb.Close()

		res := c.loader.Load(wb)
		res.Digest = digest
		res.Source = source

		status := "success"
		if len(res.Errors) > 0 {
			status = "partial"
		}
		metrics.RecordWorkbookLoad(string(origin), status, time.Since(start))

		c.mu.Lock()
		stored := seq > c.storedSeq
		if stored {
			c.storedSeq = seq
			c.current.Store(res)
			c.publishCounts(res)
		}
		c.mu.Unlock()

		c.logger.Info("workbook loaded",
			zap.String("load_id", res.ID),
			zap.String("source", source),
			zap.String("origin", string(origin)),
			zap.Bool("stored", stored),
			zap.Int("kinds", len(res.Sets)),
			zap.Int("sheet_errors", len(res.Errors)),
			zap.Duration("duration", time.Since(start)),
		)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.LoadResult), nil
}

// LoadFile reads a workbook from disk and loads it.
func (c *Cache) LoadFile(ctx context.Context, path string, origin Origin) (*domain.LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer %s: %w", path, err)
	}
	return c.Load(ctx, data, path, origin)
}

// ResolvePath returns the first existing path among the candidates. Stat
// failures other than not-exist are reported only when no candidate is found.
func ResolvePath(candidates ...string) (string, error) {
	var statErrs []error
	for _, p := range candidates {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		switch {
		case err == nil && !info.IsDir():
			return p, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			statErrs = append(statErrs, err)
		}
	}
	notFound := fmt.Errorf("no se encontró el archivo de datos: %w", os.ErrNotExist)
	if len(statErrs) > 0 {
		return "", errors.Join(append([]error{notFound}, statErrs...)...)
	}
	return "", notFound
}
