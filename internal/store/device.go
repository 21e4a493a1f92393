package store

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// PlaceholderDeviceID stands in for a missing device identifier.
const PlaceholderDeviceID = "tmpDevId"

const (
	deviceTypeSuffix    = ".deviceType"
	configurationSuffix = ".configuration"
)

// DeviceResolver names the device type owning a frame code, if exactly one
// does.
type DeviceResolver interface {
	UniqueDeviceFor(code byte) (string, bool)
}

// DeviceStore reads and writes the per-device decoding state.
type DeviceStore struct {
	storage  Storage
	resolver DeviceResolver
	log      logrus.FieldLogger

	mu    sync.Mutex
	locks map[string]*deviceLock
}

type deviceLock struct {
	mu   sync.Mutex
	refs int
}

// NewDeviceStore wraps storage. A nil log discards entries.
func NewDeviceStore(storage Storage, resolver DeviceResolver, log logrus.FieldLogger) *DeviceStore {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &DeviceStore{
		storage:  storage,
		resolver: resolver,
		log:      log,
		locks:    map[string]*deviceLock{},
	}
}

// DeviceKey returns id, or the placeholder when id is empty.
func DeviceKey(id string) string {
	if id == "" {
		return PlaceholderDeviceID
	}
	return id
}

// Lock serializes state updates of one device. Call the returned function to
// release it.
func (s *DeviceStore) Lock(id string) (unlock func()) {
	id = DeviceKey(id)
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &deviceLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// ResolveDeviceType persists and returns the device type owning code when
// exactly one family handles it. Otherwise it returns "" and stores nothing.
func (s *DeviceStore) ResolveDeviceType(ctx context.Context, id string, code byte) (string, error) {
	device, ok := s.resolver.UniqueDeviceFor(code)
	if !ok {
		return "", nil
	}
	if err := s.SetDeviceType(ctx, id, device); err != nil {
		return "", err
	}
	return device, nil
}

// DeviceType returns the stored device type, or "" when none is known.
func (s *DeviceStore) DeviceType(ctx context.Context, id string) (string, error) {
	v, _, err := s.storage.GetItem(ctx, DeviceKey(id)+deviceTypeSuffix)
	if err != nil {
		return "", fmt.Errorf("load device type of %s: %w", DeviceKey(id), err)
	}
	return v, nil
}

// SetDeviceType stores the device type.
func (s *DeviceStore) SetDeviceType(ctx context.Context, id, deviceType string) error {
	if err := s.storage.SetItem(ctx, DeviceKey(id)+deviceTypeSuffix, deviceType); err != nil {
		return fmt.Errorf("store device type of %s: %w", DeviceKey(id), err)
	}
	return nil
}

// Configuration returns the last stored configuration frame. A missing or
// unreadable entry yields an empty frame.
func (s *DeviceStore) Configuration(ctx context.Context, id string) (frame.Frame, error) {
	key := DeviceKey(id) + configurationSuffix
	v, ok, err := s.storage.GetItem(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load configuration of %s: %w", DeviceKey(id), err)
	}
	if !ok || v == "" {
		return frame.Frame{}, nil
	}
	f, err := frame.ParseHex(v)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("ignoring unreadable stored configuration")
		return frame.Frame{}, nil
	}
	return f, nil
}

// StoreConfiguration persists f when it is a configuration frame and reports
// whether it did.
func (s *DeviceStore) StoreConfiguration(ctx context.Context, id string, f frame.Frame) (bool, error) {
	if f.Len() == 0 || f.Code() != frame.ConfigurationCode {
		return false, nil
	}
	if err := s.storage.SetItem(ctx, DeviceKey(id)+configurationSuffix, f.Hex()); err != nil {
		return false, fmt.Errorf("store configuration of %s: %w", DeviceKey(id), err)
	}
	return true, nil
}

// Clear removes both entries of the device.
func (s *DeviceStore) Clear(ctx context.Context, id string) error {
	for _, suffix := range []string{deviceTypeSuffix, configurationSuffix} {
		if err := s.storage.RemoveItem(ctx, DeviceKey(id)+suffix); err != nil {
			return fmt.Errorf("clear %s: %w", DeviceKey(id), err)
		}
	}
	return nil
}
