package loaders

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

var ErrUnknownDataKind = errors.New("unknown data kind")

// DataDecoder turns the raw bytes of a *.data.toml file into a value.
type DataDecoder func(raw []byte) (interface{}, error)

// DataLoader dispatches on the document's top level `kind` key.
type DataLoader struct {
	mutex    sync.RWMutex
	decoders map[string]DataDecoder
}

func NewDataLoader() *DataLoader {
	return &DataLoader{decoders: make(map[string]DataDecoder)}
}

func (dl *DataLoader) Register(kind string, decoder DataDecoder) error {
	dl.mutex.Lock()
	defer dl.mutex.Unlock()
	if _, ok := dl.decoders[kind]; ok {
		return fmt.Errorf("data kind '%s' already registered", kind)
	}
	dl.decoders[kind] = decoder
	return nil
}

func (dl *DataLoader) Load(path string) (interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dl.Decode(raw)
}

func (dl *DataLoader) Decode(raw []byte) (interface{}, error) {
	var header struct {
		Kind string `toml:"kind"`
	}
	if err := toml.Unmarshal(raw, &header); err != nil {
		return nil, err
	}

	dl.mutex.RLock()
	decoder, ok := dl.decoders[header.Kind]
	dl.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownDataKind, header.Kind)
	}
	return decoder(raw)
}

// Decoder decodes the [values] table into a fresh *T.
func Decoder[T any]() DataDecoder {
	return func(raw []byte) (interface{}, error) {
		var doc struct {
			Values T `toml:"values"`
		}
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		v := doc.Values
		return &v, nil
	}
}
