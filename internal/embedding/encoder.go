// Package embedding turns text into token vectors and compares them.
package embedding

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const DefaultEncoding = "cl100k_base"

// Encoder maps text to a deterministic integer vector.
type Encoder interface {
	Encode(text string) []int
}

var loaderOnce sync.Once

// TiktokenEncoder encodes with a byte-pair tokenizer using embedded BPE ranks.
type TiktokenEncoder struct {
	name string
	enc  *tiktoken.Tiktoken
}

func NewTiktokenEncoder(encoding string) (*TiktokenEncoder, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TiktokenEncoder{name: encoding, enc: enc}, nil
}

func (t *TiktokenEncoder) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *TiktokenEncoder) Name() string {
	return t.name
}
