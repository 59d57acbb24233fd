// Package global holds the process-wide handles shared by the server: the validator
// used by config and HTTP input parsing, and the MongoDB session and collections.
package global

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scottcame/piet/internal/registry"
)

// Validate is the shared validator instance, set by InitValidator
var Validate *validator.Validate

var validatorOnce sync.Once

// MongoDB_Session is the connected client, nil when the server runs on the memory store
var MongoDB_Session *mongo.Client

// RegistryCollections holds the collections opened at startup, keyed by name
var RegistryCollections = registry.NewRegistry[*mongo.Collection]()
