package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"record-collection/core/collection"
	"record-collection/core/record"
	"record-collection/core/storage"
	"record-collection/core/utils"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Storage is a collection.Transport keeping JSON snapshots in object storage.
type Storage struct {
	client      storage.Client
	bucket      string
	prefix      string
	idAttribute string
	compress    bool
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
	logger      *zap.Logger

	// mu serializes read-modify-write cycles of create.
	mu sync.Mutex
}

// StorageOption configures a Storage transport.
type StorageOption func(*Storage)

// WithPrefix prepends prefix to every object name.
func WithPrefix(prefix string) StorageOption {
	return func(s *Storage) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// WithCompression stores snapshots zstd-compressed.
func WithCompression(enabled bool) StorageOption {
	return func(s *Storage) {
		s.compress = enabled
	}
}

// WithStorageIDAttribute names the identity attribute assigned on create.
func WithStorageIDAttribute(attr string) StorageOption {
	return func(s *Storage) {
		if attr != "" {
			s.idAttribute = attr
		}
	}
}

// WithStorageLogger sets the logger.
func WithStorageLogger(l *zap.Logger) StorageOption {
	return func(s *Storage) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStorage creates a storage transport writing to bucket.
func NewStorage(client storage.Client, bucket string, opts ...StorageOption) (*Storage, error) {
	s := &Storage{
		client:      client,
		bucket:      bucket,
		idAttribute: record.DefaultIDAttribute,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		s.encoder, s.decoder = enc, dec
	}
	return s, nil
}

// ObjectName returns the object holding the snapshot of target.
func (s *Storage) ObjectName(target string) string {
	name := strings.Trim(target, "/")
	if name == "" {
		name = "index"
	}
	if s.prefix != "" {
		name = path.Join(s.prefix, name)
	}
	if s.compress {
		return name + ".json.zst"
	}
	return name + ".json"
}

// Do performs req against the snapshot object of req.Target.
func (s *Storage) Do(ctx context.Context, req collection.Request) (collection.Response, error) {
	switch req.Method {
	case collection.MethodRead:
		records, err := s.read(ctx, req.Target)
		if err != nil {
			return collection.Response{}, err
		}
		return collection.Response{Records: records}, nil

	case collection.MethodUpdate:
		if err := s.write(ctx, req.Target, req.Payload); err != nil {
			return collection.Response{}, err
		}
		return collection.Response{Records: req.Payload}, nil

	case collection.MethodCreate:
		return s.create(ctx, req)
	}
	return collection.Response{}, fmt.Errorf("unsupported method %q", req.Method)
}

func (s *Storage) create(ctx context.Context, req collection.Request) (collection.Response, error) {
	if len(req.Payload) == 0 {
		return collection.Response{}, fmt.Errorf("create requires a payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx, req.Target)
	if err != nil {
		return collection.Response{}, err
	}

	created := req.Payload[0].Clone()
	if utils.ToString(created[s.idAttribute]) == "" {
		created[s.idAttribute] = uuid.NewString()
	}
	records = append(records, created)

	if err := s.write(ctx, req.Target, records); err != nil {
		return collection.Response{}, err
	}
	return collection.Response{Records: []collection.Attributes{created}}, nil
}

// read loads the snapshot of target. A missing object is an empty snapshot.
func (s *Storage) read(ctx context.Context, target string) ([]collection.Attributes, error) {
	name := s.ObjectName(target)
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get object %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read object %s: %w", name, err)
	}

	if s.compress {
		if data, err = s.decoder.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("failed to decompress object %s: %w", name, err)
		}
	}
	return DecodeRecords(data)
}

func (s *Storage) write(ctx context.Context, target string, records []collection.Attributes) error {
	if records == nil {
		records = []collection.Attributes{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	contentType := "application/json"
	if s.compress {
		data = s.encoder.EncodeAll(data, nil)
		contentType = "application/zstd"
	}

	name := s.ObjectName(target)
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", name, err)
	}

	s.logger.Debug("Snapshot written",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.Int("records", len(records)),
		zap.Int("bytes", len(data)),
	)
	return nil
}
