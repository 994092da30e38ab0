package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/judi-api/internal/model"
)

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Classify texts locally without starting the server",
	Long:  "Loads the model and prints one JSON result per text. With no arguments, each line of stdin is classified.",
	RunE:  runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	modelServer, err := model.Load(cfg.Model, cfg.Inference.Workers)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer modelServer.Close()

	return classifyAll(cmd, args, modelServer.Predict)
}

type predictFunc func(ctx context.Context, text string) (*model.PredictionResult, error)

// classifyAll writes one JSON line per input, reading stdin lines when args
// is empty.
func classifyAll(cmd *cobra.Command, args []string, predict predictFunc) error {
	enc := json.NewEncoder(cmd.OutOrStdout())

	classify := func(text string) error {
		result, err := predict(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("failed to classify %q: %w", text, err)
		}
		return enc.Encode(result)
	}

	if len(args) > 0 {
		for _, text := range args {
			if err := classify(text); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		if err := classify(text); err != nil {
			return err
		}
	}
	return scanner.Err()
}
