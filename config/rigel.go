package config

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/remiges-tech/rigel"
	"github.com/remiges-tech/rigel/etcd"
)

// RigelTag is the struct tag naming the rigel key a field is loaded from.
const RigelTag = "rigel"

const (
	rigelTimeout         = 5 * time.Second
	defaultRigelInterval = 10 * time.Second
)

// Getter is the part of the rigel client the Rigel source needs.
type Getter interface {
	Get(ctx context.Context, key string) (string, error)
}

// Rigel loads configuration from a rigel schema/config stored in etcd.
type Rigel struct {
	Client       Getter
	PollInterval time.Duration
}

func (r *Rigel) Check() error {
	if r.Client == nil {
		return fmt.Errorf("rigel client cannot be nil")
	}
	return nil
}

// LoadConfig fetches every key named by a `rigel` tag on config and decodes the
// values into the tagged fields. Keys missing from rigel leave their fields untouched.
func (r *Rigel) LoadConfig(config any) error {
	ctx, cancel := context.WithTimeout(context.Background(), rigelTimeout)
	defer cancel()

	keys := TaggedKeys(config, RigelTag)
	values := make(map[string]string, len(keys))
	var firstErr error
	for _, key := range keys {
		value, err := r.Client.Get(ctx, key)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("get %s: %w", key, err)
			}
			continue
		}
		values[key] = value
	}
	if len(values) == 0 && firstErr != nil {
		return firstErr
	}

	return env.ParseWithOptions(config, env.Options{
		TagName:     RigelTag,
		Environment: values,
	})
}

// Get returns the value of key from rigel.
func (r *Rigel) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rigelTimeout)
	defer cancel()
	return r.Client.Get(ctx, key)
}

// Watch polls key every PollInterval and sends an Event when its value changes.
func (r *Rigel) Watch(ctx context.Context, key string, events chan<- Event) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = defaultRigelInterval
	}
	last, _ := r.Get(key)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				value, err := r.Get(key)
				if err != nil || value == last {
					continue
				}
				last = value
				select {
				case events <- Event{Key: key, Value: value}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}

// NewRigelClient connects to etcd and returns a rigel client bound to one
// app/module/version/config.
func NewRigelClient(etcdEndpoints, app, module string, version int, configName string) (*rigel.Rigel, error) {
	etcdStorage, err := etcd.NewEtcdStorage(strings.Split(etcdEndpoints, ","))
	if err != nil {
		return nil, fmt.Errorf("failed to create EtcdStorage: %w", err)
	}

	return rigel.New(etcdStorage, app, module, version, configName), nil
}

// TaggedKeys lists the tag values of the exported top-level fields of the struct
// that v points to. Options after a comma are dropped.
func TaggedKeys(v any, tag string) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}
