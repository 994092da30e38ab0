package model

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Runner executes one forward pass. Implementations need not be safe for
// concurrent use; Pool hands each runner to one task at a time.
type Runner interface {
	Run(inputIDs, attentionMask []int64) ([]float32, error)
	Close() error
}

// Session is an ONNX Runtime session bound to preallocated [1, seqLen]
// input tensors and a [1, NumClasses] output tensor.
type Session struct {
	session       *ort.AdvancedSession
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	logits        *ort.Tensor[float32]
}

// NewSession requires the ONNX Runtime environment to be initialized.
func NewSession(modelPath string, meta Metadata, seqLen int) (*Session, error) {
	inputShape := ort.NewShape(1, int64(seqLen))
	outputShape := ort.NewShape(1, int64(meta.NumClasses))

	s := &Session{}

	var err error
	s.inputIDs, err = ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}

	s.attentionMask, err = ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}

	s.logits, err = ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s.session, err = ort.NewAdvancedSession(modelPath,
		[]string{meta.InputIDsName, meta.AttentionMaskName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{s.inputIDs, s.attentionMask}, []ort.ArbitraryTensor{s.logits},
		nil)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return s, nil
}

// Run copies the encoded inputs into the bound tensors and returns a copy of
// the logits.
func (s *Session) Run(inputIDs, attentionMask []int64) ([]float32, error) {
	ids := s.inputIDs.GetData()
	mask := s.attentionMask.GetData()
	if len(inputIDs) != len(ids) || len(attentionMask) != len(mask) {
		return nil, fmt.Errorf("expected %d input values, got %d ids and %d mask",
			len(ids), len(inputIDs), len(attentionMask))
	}
	copy(ids, inputIDs)
	copy(mask, attentionMask)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.logits.GetData()
	logits := make([]float32, len(out))
	copy(logits, out)
	return logits, nil
}

func (s *Session) Close() error {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.inputIDs != nil {
		s.inputIDs.Destroy()
	}
	if s.attentionMask != nil {
		s.attentionMask.Destroy()
	}
	if s.logits != nil {
		s.logits.Destroy()
	}
	return nil
}
