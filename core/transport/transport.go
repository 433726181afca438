package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"record-collection/core/collection"
	"record-collection/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies carries the clients a transport may need.
type Dependencies struct {
	Storage     storage.Client
	Bucket      string
	DB          *gorm.DB
	IDAttribute string
	Logger      *zap.Logger
}

// New builds the transport selected by cfg.Kind. KindNone returns nil: the
// collection then works in memory only.
func New(cfg Config, deps Dependencies) (collection.Transport, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Kind) {
	case "", KindNone:
		return nil, nil
	case KindHTTP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("http transport requires a base url")
		}
		return NewHTTP(cfg.BaseURL,
			WithTimeout(cfg.Timeout()),
			WithAPIKey(cfg.ApiKey),
			WithRateLimit(cfg.RateLimit, cfg.Burst),
			WithHTTPLogger(logger),
		), nil
	case KindStorage:
		if deps.Storage == nil {
			return nil, fmt.Errorf("storage transport requires a storage client")
		}
		s, err := NewStorage(deps.Storage, deps.Bucket,
			WithPrefix(cfg.Prefix),
			WithCompression(cfg.Compress),
			WithStorageIDAttribute(deps.IDAttribute),
			WithStorageLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindDatabase:
		if deps.DB == nil {
			return nil, fmt.Errorf("database transport requires a database connection")
		}
		d, err := NewDatabase(deps.DB, cfg.Table, deps.IDAttribute, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown transport kind %q", cfg.Kind)
}

// DecodeRecords accepts a JSON array of objects, a single object or an empty body.
func DecodeRecords(body []byte) ([]collection.Attributes, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var one collection.Attributes
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		return []collection.Attributes{one}, nil
	}

	var many []collection.Attributes
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return many, nil
}
