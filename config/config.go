package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Config is an interface that represents a source from which application configuration can be loaded.
type Config interface {
	LoadConfig(c any) error
	Check() error
	Get(key string) (string, error)

	// Watch watches for changes to a key in the storage and sends the events to the provided channel.
	// The events includes the key and the updated value.
	// Watch returns once watching has started; it stops when ctx is cancelled.
	Watch(ctx context.Context, key string, events chan<- Event) error
}

// Event represents a change to a key in the storage.
// Key is the key that was changed
// Value is the new value of the key
type Event struct {
	Key   string
	Value string
}

// Load first ensures that the config system valid and accessible. Then it loads the config into c.
func Load(cs Config, c any) error {
	if err := cs.Check(); err != nil {
		return err
	}
	return cs.LoadConfig(c)
}

// File

// File loads configuration from a JSON, YAML or TOML file, chosen by extension.
type File struct {
	ConfigFilePath string
	Config         map[string]interface{}

	mu sync.RWMutex
}

func (f *File) Check() error {
	if f.ConfigFilePath == "" {
		return fmt.Errorf("configFilePath cannot be empty")
	}

	return nil
}

// NewFile returns a File source for configFilePath.
func NewFile(configFilePath string) (*File, error) {
	file := &File{ConfigFilePath: configFilePath}

	if err := file.Check(); err != nil {
		return nil, err
	}

	return file, nil
}

// LoadConfig decodes the file into appConfig and keeps the top-level keys for Get.
func (f *File) LoadConfig(appConfig any) error {
	data, err := os.ReadFile(f.ConfigFilePath)
	if err != nil {
		return err
	}

	if err := decode(f.ConfigFilePath, data, appConfig); err != nil {
		return fmt.Errorf("decode %s: %w", f.ConfigFilePath, err)
	}

	values := map[string]interface{}{}
	if err := decode(f.ConfigFilePath, data, &values); err != nil {
		return fmt.Errorf("decode %s: %w", f.ConfigFilePath, err)
	}

	f.mu.Lock()
	f.Config = values
	f.mu.Unlock()
	return nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".toml":
		_, err := toml.Decode(string(data), v)
		return err
	default:
		return json.Unmarshal(data, v)
	}
}

type ValueNotStringError struct {
	Key   string
	Value interface{}
}

func (e *ValueNotStringError) Error() string {
	return fmt.Sprintf("value for key %s is not a string: %v", e.Key, e.Value)
}

type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %s not found in config", e.Key)
}

// Get retrieves a value from the configuration based on the provided key.
// If the value is a string, it is returned as is. If the value is not a string,
// it is converted to a string using fmt.Sprintf and returned along with the error ValueNotStringError.
// If the key is not found in the configuration, an error of type KeyNotFoundError is returned.
func (f *File) Get(key string) (string, error) {
	f.mu.RLock()
	value, ok := f.Config[key]
	f.mu.RUnlock()
	if !ok {
		return "", &KeyNotFoundError{Key: key}
	}

	strValue := fmt.Sprintf("%v", value)

	strValueAsserted, ok := value.(string)
	if !ok {
		return strValue, &ValueNotStringError{Key: key, Value: value}
	}

	return strValueAsserted, nil
}

// Watch re-reads the file whenever it is written and sends an Event when the
// value of key differs from the last value seen. The parent directory is
// watched so editors that replace the file are noticed too.
func (f *File) Watch(ctx context.Context, key string, events chan<- Event) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.ConfigFilePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", f.ConfigFilePath, err)
	}

	last, _ := f.Get(key)
	baseName := filepath.Base(f.ConfigFilePath)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != baseName {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				value, changed := f.reload(key, last)
				if !changed {
					continue
				}
				last = value
				select {
				case events <- Event{Key: key, Value: value}:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// reload refreshes the key map from disk. A file caught mid-write fails to
// decode and is ignored until the next event.
func (f *File) reload(key, last string) (string, bool) {
	data, err := os.ReadFile(f.ConfigFilePath)
	if err != nil {
		return last, false
	}
	values := map[string]interface{}{}
	if err := decode(f.ConfigFilePath, data, &values); err != nil {
		return last, false
	}
	f.mu.Lock()
	f.Config = values
	f.mu.Unlock()

	value, err := f.Get(key)
	var notString *ValueNotStringError
	if err != nil && !errors.As(err, &notString) {
		return last, false
	}
	return value, value != last
}
