package model

import (
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

const (
	padToken = "[PAD]"
	sepToken = "[SEP]"
)

// Tokenizer encodes text into fixed-length model inputs.
type Tokenizer interface {
	Encode(text string) (inputIDs, attentionMask []int64, err error)
}

// HFTokenizer wraps a HuggingFace tokenizer.json.
type HFTokenizer struct {
	// mu serializes encoding; the underlying tokenizer is not documented as
	// goroutine safe.
	mu        sync.Mutex
	tk        *tokenizer.Tokenizer
	maxLength int
	padID     int
	sepID     int
}

// NewHFTokenizer loads path and pads every encoding to maxLength. Truncation
// is done in Encode: the library's own truncation panics on single inputs.
func NewHFTokenizer(path string, maxLength int) (*HFTokenizer, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("invalid max length %d", maxLength)
	}

	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	padID, ok := tk.TokenToId(padToken)
	if !ok {
		padID = 0
	}
	sepID, ok := tk.TokenToId(sepToken)
	if !ok {
		return nil, fmt.Errorf("tokenizer has no %s token", sepToken)
	}

	tk.WithPadding(&tokenizer.PaddingParams{
		Strategy:  *tokenizer.NewPaddingStrategy(tokenizer.WithFixed(maxLength)),
		Direction: tokenizer.Right,
		PadId:     padID,
		PadTypeId: 0,
		PadToken:  padToken,
	})

	return &HFTokenizer{
		tk:        tk,
		maxLength: maxLength,
		padID:     padID,
		sepID:     sepID,
	}, nil
}

// Encode returns exactly maxLength ids and mask values. Overflowing input
// keeps its first maxLength-1 ids and ends in [SEP].
func (t *HFTokenizer) Encode(text string) ([]int64, []int64, error) {
	en, err := t.encode(text)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode text: %w", err)
	}

	ids := truncateWithSep(en.Ids, t.maxLength, t.sepID)
	return fitLength(ids, t.maxLength, t.padID), fitLength(en.AttentionMask, t.maxLength, 0), nil
}

func (t *HFTokenizer) encode(text string) (en *tokenizer.Encoding, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			en, err = nil, fmt.Errorf("tokenizer panicked: %v", r)
		}
	}()

	return t.tk.EncodeSingle(text, true)
}

// truncateWithSep cuts ids to n entries and puts sep in the last slot.
func truncateWithSep(ids []int, n, sep int) []int {
	if len(ids) <= n {
		return ids
	}
	out := make([]int, n)
	copy(out, ids[:n-1])
	out[n-1] = sep
	return out
}

// fitLength truncates or right-pads values to exactly n entries so every
// encoding has the rectangular [1, n] shape the session was built for.
func fitLength(values []int, n, pad int) []int64 {
	out := make([]int64, n)
	for i := range out {
		if i < len(values) {
			out[i] = int64(values[i])
		} else {
			out[i] = int64(pad)
		}
	}
	return out
}
