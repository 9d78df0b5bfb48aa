package tx

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]func() Transaction)
)

// Register makes an operation type constructible by NewFromType and
// FromJSON. Operation packages call it from init.
func Register(t Type, factory func() Transaction) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("tx: type %s registered twice", t))
	}
	registry[t] = factory
}

// NewFromType returns an empty operation of type t.
func NewFromType(t Type) (Transaction, error) {
	registryMu.RLock()
	factory, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransactionType, t)
	}
	return factory(), nil
}

// FromJSON parses an operation, dispatching on its TransactionType.
func FromJSON(data []byte) (Transaction, error) {
	var header struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingRequiredField, err)
	}
	t, ok := TypeFromName(header.TransactionType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, header.TransactionType)
	}
	tx, err := NewFromType(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, tx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", t, err)
	}
	return tx, nil
}

// ToJSON serializes an operation.
func ToJSON(tx Transaction) ([]byte, error) {
	tx.GetCommon().TransactionType = tx.TxType().String()
	return json.Marshal(tx)
}

// SupportedTypes lists the registered operation types in order.
func SupportedTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
