package config

import (
	"fmt"
	"strings"
	"time"
)

// Storage backend identifiers. Exactly one variant is active per
// deployment.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

type StorageConfig struct {
	Backend string             `koanf:"backend"`
	File    FileStorageConfig  `koanf:"file"`
	Mongo   MongoStorageConfig `koanf:"mongo"`
}

type FileStorageConfig struct {
	Path string `koanf:"path"`
}

type MongoStorageConfig struct {
	URI        string        `koanf:"uri"`
	Database   string        `koanf:"database"`
	Collection string        `koanf:"collection"`
	Timeout    time.Duration `koanf:"timeout"`
}

func (c *StorageConfig) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.File.Path == "" {
			return fmt.Errorf("file storage path is not configured")
		}
	case BackendMongo:
		if !isValidMongoURI(c.Mongo.URI) {
			return fmt.Errorf("mongo URI must start with 'mongodb://': %s", c.Mongo.URI)
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo database is not configured")
		}
		if c.Mongo.Collection == "" {
			return fmt.Errorf("mongo collection is not configured")
		}
		if c.Mongo.Timeout <= 0 {
			return fmt.Errorf("invalid mongo connect timeout: %v", c.Mongo.Timeout)
		}
	default:
		return fmt.Errorf("unknown storage backend: %q (expected %q or %q)", c.Backend, BackendFile, BackendMongo)
	}
	return nil
}

// isValidMongoURI checks if the provided URI is a valid mongo connection string.
func isValidMongoURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") ||
		strings.HasPrefix(uri, "mongodb+srv://")
}
