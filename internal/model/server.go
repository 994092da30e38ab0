package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/judi-api/internal/config"
)

// Server holds the loaded tokenizer and inference engine. It is immutable
// after construction and shared by every request.
type Server struct {
	Metadata  Metadata
	tokenizer Tokenizer
	engine    Engine
	ownsEnv   bool
}

// NewServer wires an already built tokenizer and engine together.
func NewServer(tok Tokenizer, engine Engine, meta Metadata) *Server {
	return &Server{
		Metadata:  meta,
		tokenizer: tok,
		engine:    engine,
	}
}

// Load initializes ONNX Runtime and loads the tokenizer, metadata and one
// session per inference worker. Any failure releases what was created.
func Load(cfg config.ModelConfig, workers int) (*Server, error) {
	meta, err := LoadMetadata(cfg.MetadataPath())
	if err != nil {
		return nil, err
	}

	tok, err := NewHFTokenizer(cfg.TokenizerPath(), cfg.MaxLength)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.ModelPath()); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if cfg.OnnxRuntimeLib != "" {
		ort.SetSharedLibraryPath(cfg.OnnxRuntimeLib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	runners := make([]Runner, 0, workers)
	cleanup := func() {
		for _, r := range runners {
			r.Close()
		}
		ort.DestroyEnvironment()
	}

	for i := 0; i < workers; i++ {
		sess, err := NewSession(cfg.ModelPath(), meta, cfg.MaxLength)
		if err != nil {
			cleanup()
			return nil, err
		}
		runners = append(runners, sess)
	}

	pool, err := NewPool(runners)
	if err != nil {
		cleanup()
		return nil, err
	}

	s := NewServer(tok, pool, meta)
	s.ownsEnv = true
	return s, nil
}

// LoadMetadata reads the optional metadata file; a missing file yields
// DefaultMetadata. Fields left empty in the file keep their defaults.
func LoadMetadata(path string) (Metadata, error) {
	meta := DefaultMetadata()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata: %w", err)
	}

	var fromFile Metadata
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return meta, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if fromFile.InputIDsName != "" {
		meta.InputIDsName = fromFile.InputIDsName
	}
	if fromFile.AttentionMaskName != "" {
		meta.AttentionMaskName = fromFile.AttentionMaskName
	}
	if fromFile.OutputName != "" {
		meta.OutputName = fromFile.OutputName
	}
	if fromFile.NumClasses < 0 {
		return meta, fmt.Errorf("invalid num_classes %d", fromFile.NumClasses)
	}
	if fromFile.NumClasses > 0 {
		meta.NumClasses = fromFile.NumClasses
	}

	return meta, nil
}

// Predict tokenizes text, runs the classifier and labels the result.
func (s *Server) Predict(ctx context.Context, text string) (*PredictionResult, error) {
	inputIDs, attentionMask, err := s.tokenizer.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	logits, err := s.engine.Infer(ctx, inputIDs, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return Classify(logits)
}

func (s *Server) Close() error {
	err := s.engine.Close()
	if s.ownsEnv {
		if envErr := ort.DestroyEnvironment(); envErr != nil {
			err = errors.Join(err, envErr)
		}
	}
	return err
}
