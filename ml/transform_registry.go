package ml

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownTransform = errors.New("unknown feature transform")

// FeatureTransform turns raw records into the augmented schema a pipeline was fit on.
type FeatureTransform func(records []HousingRecord) []AugmentedRecord

var (
	transformsMu sync.RWMutex
	transforms   = make(map[string]FeatureTransform)
)

// RegisterTransform binds key (name@version) to fn. Keys are never rebound: an artifact
// that names a key must always get the transform it was trained with.
func RegisterTransform(key string, fn FeatureTransform) error {
	if key == "" {
		return errors.New("transform key is required")
	}
	if fn == nil {
		return errors.New("transform func is required")
	}
	transformsMu.Lock()
	defer transformsMu.Unlock()
	if _, exists := transforms[key]; exists {
		return fmt.Errorf("transform %q already registered", key)
	}
	transforms[key] = fn
	return nil
}

func LookupTransform(key string) (FeatureTransform, error) {
	transformsMu.RLock()
	defer transformsMu.RUnlock()
	fn, ok := transforms[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, key)
	}
	return fn, nil
}

func RegisteredTransforms() []string {
	transformsMu.RLock()
	defer transformsMu.RUnlock()
	keys := make([]string, 0, len(transforms))
	for key := range transforms {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
