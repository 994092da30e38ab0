package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/judi-api/internal/model"
	"github.com/Brownie44l1/judi-api/pkg/client"
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Classify texts through a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		c := client.New(url, timeout)
		return classifyAll(cmd, args, func(ctx context.Context, text string) (*model.PredictionResult, error) {
			resp, err := c.Predict(ctx, text)
			if err != nil {
				return nil, err
			}
			return &model.PredictionResult{
				Classification:  resp.Classification,
				ConfidenceScore: resp.ConfidenceScore,
			}, nil
		})
	},
}

func init() {
	queryCmd.Flags().String("url", "http://localhost:5000", "Base URL of the classifier server")
	queryCmd.Flags().Duration("timeout", client.DefaultTimeout, "Request timeout")
}
