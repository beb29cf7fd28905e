package wallet

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
	"github.com/xsnexplorer/xsn-trezor/internal/storage"
	"github.com/xsnexplorer/xsn-trezor/pkg/types"
)

// DeviceAddress is an address derived on a signing device.
type DeviceAddress struct {
	Address        string   `json:"address"`
	Path           []uint32 `json:"path"`
	SerializedPath string   `json:"serializedPath"`
}

// Type returns the address type of the entry.
func (d DeviceAddress) Type() (types.AddressType, error) {
	return types.ClassifyAddress(d.Address)
}

// AddressLookup finds the derivation path of an address.
type AddressLookup interface {
	// Find returns ErrAddressNotFound when the address is unknown.
	Find(address string) (DeviceAddress, error)
}

// AddressBook is the list of addresses derived on one device.
type AddressBook interface {
	AddressLookup
	List() ([]DeviceAddress, error)
	Add(DeviceAddress) error
	Clear() error
}

// Addresses is an in-memory AddressLookup.
type Addresses []DeviceAddress

// Find implements AddressLookup.
func (a Addresses) Find(address string) (DeviceAddress, error) {
	for _, d := range a {
		if d.Address == address {
			return d, nil
		}
	}
	return DeviceAddress{}, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
}

// NextIndex returns the index of the next address of type t: the number of
// entries already of that type.
func NextIndex(entries []DeviceAddress, t types.AddressType) uint32 {
	var n uint32
	for _, e := range entries {
		if et, err := e.Type(); err == nil && et == t {
			n++
		}
	}
	return n
}

// Key layout inside a device namespace:
//
//	e/<seq>      JSON DeviceAddress, seq is big-endian uint64
//	i/<address>  seq of the entry for address
//	seq          next seq
var (
	entryPrefix = []byte("e/")
	indexPrefix = []byte("i/")
	seqKey      = []byte("seq")
)

// Store is an AddressBook persisted in a storage.DB, namespaced per device.
type Store struct {
	mu     sync.Mutex
	db     *storage.PrefixDB
	logger zerolog.Logger
}

// NewStore returns the address book of device inside db.
func NewStore(db storage.DB, device string) *Store {
	return &Store{
		db:     storage.NewPrefixDB(db, []byte("book/"+device+"/")),
		logger: klog.Wallet.With().Str("device", device).Logger(),
	}
}

func entryKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte{}, entryPrefix...), seq)
}

func indexKey(address string) []byte {
	return append(append([]byte{}, indexPrefix...), address...)
}

// Add appends an entry. Adding an address that is already present is a
// no-op.
func (s *Store) Add(d DeviceAddress) error {
	if _, err := types.ClassifyAddress(d.Address); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.db.Has(indexKey(d.Address))
	if err != nil {
		return fmt.Errorf("check address: %w", err)
	}
	if ok {
		return nil
	}

	var next uint64
	raw, err := s.db.Get(seqKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("read seq: %w", err)
	case len(raw) != 8:
		return fmt.Errorf("corrupt seq: %d bytes", len(raw))
	default:
		next = binary.BigEndian.Uint64(raw)
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}

	b := s.db.NewBatch()
	seq := binary.BigEndian.AppendUint64(nil, next)
	if err := b.Put(entryKey(next), data); err != nil {
		return err
	}
	if err := b.Put(indexKey(d.Address), seq); err != nil {
		return err
	}
	if err := b.Put(seqKey, binary.BigEndian.AppendUint64(nil, next+1)); err != nil {
		return err
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("store address: %w", err)
	}
	s.logger.Debug().Str("address", d.Address).Uint64("seq", next).Msg("Address recorded")
	return nil
}

// List returns the entries in the order they were added.
func (s *Store) List() ([]DeviceAddress, error) {
	type item struct {
		seq uint64
		d   DeviceAddress
	}
	var items []item
	err := s.db.ForEach(entryPrefix, func(key, value []byte) error {
		if len(key) != len(entryPrefix)+8 {
			return fmt.Errorf("corrupt entry key %x", key)
		}
		var d DeviceAddress
		if err := json.Unmarshal(value, &d); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		items = append(items, item{binary.BigEndian.Uint64(key[len(entryPrefix):]), d})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	out := make([]DeviceAddress, len(items))
	for i, it := range items {
		out[i] = it.d
	}
	return out, nil
}

// Find implements AddressLookup.
func (s *Store) Find(address string) (DeviceAddress, error) {
	seq, err := s.db.Get(indexKey(address))
	if errors.Is(err, storage.ErrNotFound) {
		return DeviceAddress{}, fmt.Errorf("%w: %s", ErrAddressNotFound, address)
	}
	if err != nil {
		return DeviceAddress{}, err
	}
	if len(seq) != 8 {
		return DeviceAddress{}, fmt.Errorf("corrupt index for %s", address)
	}

	data, err := s.db.Get(entryKey(binary.BigEndian.Uint64(seq)))
	if err != nil {
		return DeviceAddress{}, fmt.Errorf("read entry for %s: %w", address, err)
	}
	var d DeviceAddress
	if err := json.Unmarshal(data, &d); err != nil {
		return DeviceAddress{}, fmt.Errorf("decode entry: %w", err)
	}
	return d, nil
}

// Clear removes every entry of the device.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.DeleteAll(); err != nil {
		return err
	}
	s.logger.Debug().Msg("Address book cleared")
	return nil
}
