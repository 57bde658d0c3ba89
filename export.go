package bloomgo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/bloomgo/blobstore"
	"github.com/hupe1980/bloomgo/codec"
	"golang.org/x/sync/errgroup"
)

// ExportOption configures snapshot transport behavior.
type ExportOption func(*exportOptions)

type exportOptions struct {
	compression codec.Compression
}

// WithCompression wraps transported snapshots in the given frame format.
// Imports sniff the frame magic, so no matching option is needed on read.
// Compression never applies to Export(path) or the mmap backing file, whose
// byte layout must stay addressable.
func WithCompression(c codec.Compression) ExportOption {
	return func(o *exportOptions) {
		o.compression = c
	}
}

func applyExportOptions(optFns []ExportOption) exportOptions {
	var o exportOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// ExportSize returns the byte length of the binary snapshot form.
func (f *Filter) ExportSize() uint64 {
	return f.params.byteLength + codec.TrailerSize
}

// WriteTo writes the binary snapshot to w, implementing io.WriterTo.
func (f *Filter) WriteTo(w io.Writer) (int64, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}

	cw := &countingWriter{w: w}
	err := codec.Encode(cw, f.snapshot())
	return cw.n, err
}

// Export writes the binary snapshot to a file at path.
//
// For a file-backed filter this is a successful no-op: the backing file
// already holds the current state.
func (f *Filter) Export(path string) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if f.onDisk {
		return nil
	}

	start := time.Now()
	err := f.exportFile(path)
	f.metrics.RecordExport(f.ExportSize(), time.Since(start), err)
	f.logger.LogExport(path, f.ExportSize(), err)
	return err
}

func (f *Filter) exportFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bloomgo: create %s: %w", path, err)
	}
	if _, err := f.WriteTo(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ExportHex renders the binary snapshot as a hex string.
func (f *Filter) ExportHex() string {
	if f.closed.Load() {
		return ""
	}
	return codec.EncodeHex(f.snapshot())
}

// ExportToStore writes the snapshot to a blob store, optionally compressed.
// Unlike Export, this always writes, even for file-backed filters: the store
// is a different destination than the backing file.
func (f *Filter) ExportToStore(ctx context.Context, store blobstore.BlobStore, name string, optFns ...ExportOption) error {
	if f.closed.Load() {
		return ErrClosed
	}
	o := applyExportOptions(optFns)

	start := time.Now()
	err := f.exportToStore(ctx, store, name, o)
	f.metrics.RecordExport(f.ExportSize(), time.Since(start), err)
	f.logger.LogExport(name, f.ExportSize(), err)
	return err
}

func (f *Filter) exportToStore(ctx context.Context, store blobstore.BlobStore, name string, o exportOptions) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("bloomgo: create blob %s: %w", name, err)
	}

	cw, err := codec.NewCompressingWriter(w, o.compression)
	if err != nil {
		_ = w.Close()
		return err
	}

	if _, err := f.WriteTo(cw); err != nil {
		_ = cw.Close()
		_ = w.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		_ = w.Close()
		return fmt.Errorf("bloomgo: flush blob %s: %w", name, err)
	}
	return w.Close()
}

// ExportToStores replicates the snapshot to several blob stores in parallel.
// The first error aborts the remaining uploads via context cancellation.
func (f *Filter) ExportToStores(ctx context.Context, stores []blobstore.BlobStore, name string, optFns ...ExportOption) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, store := range stores {
		store := store
		g.Go(func() error {
			return f.ExportToStore(ctx, store, name, optFns...)
		})
	}
	return g.Wait()
}

// ImportFromStore reads a snapshot blob into a fresh heap-backed filter,
// transparently decompressing zstd and lz4 frames.
func ImportFromStore(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Filter, error) {
	start := time.Now()

	f, size, err := importFromStore(ctx, store, name, optFns)

	o := applyOptions(optFns)
	o.metricsCollector.RecordImport(size, time.Since(start), err)
	o.logger.LogImport(name, elementsAddedOrZero(f), err)
	return f, err
}

func importFromStore(ctx context.Context, store blobstore.BlobStore, name string, optFns []Option) (*Filter, uint64, error) {
	raw, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, 0, err
	}

	r, err := codec.NewDecompressingReader(bytes.NewReader(raw))
	if err != nil {
		return nil, uint64(len(raw)), err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, uint64(len(raw)), fmt.Errorf("bloomgo: decompress blob %s: %w", name, err)
	}

	snap, err := codec.Decode(data)
	if err != nil {
		return nil, uint64(len(raw)), err
	}

	f, err := fromSnapshot(snap, optFns)
	return f, uint64(len(raw)), err
}

func elementsAddedOrZero(f *Filter) uint64 {
	if f == nil {
		return 0
	}
	return f.ElementsAdded()
}

// countingWriter tracks bytes written for WriteTo's contract.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
