package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"record-collection/core/collection"
	"record-collection/core/config"
	"record-collection/core/database"
	"record-collection/core/events"
	"record-collection/core/storage"
	"record-collection/core/transport"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// buildCollection wires the configured schema, transport and event dispatcher
// into a collection. Only the backend selected by the transport kind is
// connected.
func buildCollection(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*collection.Collection, *events.Dispatcher, error) {
	schema, err := cfg.Collection.Schema()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid collection schema: %w", err)
	}
	ccfg, err := cfg.Collection.CollectionConfig(schema)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid collection configuration: %w", err)
	}

	deps := transport.Dependencies{
		IDAttribute: schema.IDAttribute(),
		Bucket:      cfg.Storage.Bucket,
		Logger:      logg,
	}

	switch strings.ToLower(cfg.Transport.Kind) {
	case transport.KindStorage:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, nil, err
		}
		deps.Storage = client
		logg.Info("Connected to storage", zap.String("endpoint", cfg.Storage.Endpoint), zap.String("bucket", cfg.Storage.Bucket))
	case transport.KindDatabase:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.DB = db
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("name", cfg.Database.Name))
	}

	tr, err := transport.New(cfg.Transport, deps)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transport: %w", err)
	}

	dispatcher := events.NewDispatcher()
	ccfg.Transport = tr
	ccfg.Bus = dispatcher
	ccfg.Logger = logg

	c, err := collection.New(ccfg)
	if err != nil {
		return nil, nil, err
	}
	return c, dispatcher, nil
}

// loadSeed reads records from a YAML file holding either a list of records or
// a single record.
func loadSeed(path string) ([]collection.Attributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var one map[string]any
		if err := root.Decode(&one); err != nil {
			return nil, fmt.Errorf("failed to decode seed record: %w", err)
		}
		return []collection.Attributes{one}, nil
	case yaml.SequenceNode:
		var many []map[string]any
		if err := root.Decode(&many); err != nil {
			return nil, fmt.Errorf("failed to decode seed records: %w", err)
		}
		out := make([]collection.Attributes, len(many))
		for i, m := range many {
			out[i] = m
		}
		return out, nil
	}
	return nil, fmt.Errorf("seed file must hold a record or a list of records")
}
